package main

import (
	"context"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/quakeboard/internal/api"
	"github.com/sells-group/quakeboard/internal/dataset"
	"github.com/sells-group/quakeboard/internal/fetcher"
	"github.com/sells-group/quakeboard/internal/model"
	"github.com/sells-group/quakeboard/internal/query"
	"github.com/sells-group/quakeboard/internal/store"
)

// loadEngine loads the configured dataset, local or remote, and wraps it
// in a query engine.
func loadEngine(ctx context.Context) (*query.Engine, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	ds, err := dataset.Open(ctx, f, cfg.Dataset.Path, dataset.Options{
		Encoding:   cfg.Dataset.Encoding,
		Delimiter:  firstRune(cfg.Dataset.Delimiter),
		Comment:    firstRune(cfg.Dataset.Comment),
		Sheet:      cfg.Dataset.Sheet,
		SheetIndex: cfg.Dataset.SheetIndex,
	})
	if err != nil {
		return nil, eris.Wrap(err, "load dataset")
	}
	return query.NewEngine(ds), nil
}

// firstRune returns the single character of a validated config value, or
// zero when it is empty.
func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// initStore opens and migrates the configured view store.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// filterFlags binds the FilterSpec predicates to command-line flags.
type filterFlags struct {
	plates      []string
	cities      []string
	predictions []string
	year        int
	month       int
	from        string
	to          string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.plates, "plate", nil, "tectonic plate (repeatable)")
	cmd.Flags().StringSliceVar(&f.cities, "city", nil, "city (repeatable)")
	cmd.Flags().StringSliceVar(&f.predictions, "prediction", nil, "prediction flag, Yes or No (repeatable)")
	cmd.Flags().IntVar(&f.year, "year", 0, "year (0 = any)")
	cmd.Flags().IntVar(&f.month, "month", 0, "month 1-12 (0 = any)")
	cmd.Flags().StringVar(&f.from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last date, YYYY-MM-DD")
}

// spec converts the flags using the same parser as the HTTP API.
func (f *filterFlags) spec() (model.FilterSpec, error) {
	q := url.Values{
		"plate":      f.plates,
		"city":       f.cities,
		"prediction": f.predictions,
	}
	if f.year != 0 {
		q.Set("year", strconv.Itoa(f.year))
	}
	if f.month != 0 {
		q.Set("month", strconv.Itoa(f.month))
	}
	q.Set("from", f.from)
	q.Set("to", f.to)
	return api.ParseFilterSpec(q)
}
