package dataset

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quakeboard/internal/fetcher"
	"github.com/sells-group/quakeboard/internal/model"
)

// Open loads location, which is either a local path or an http(s) URL.
// Remote files are downloaded to a temporary directory with f and removed
// once parsed. The dataset Source is always location.
func Open(ctx context.Context, f fetcher.Fetcher, location string, opts Options) (*model.Dataset, error) {
	if !fetcher.IsRemote(location) {
		return LoadFile(ctx, location, opts)
	}
	if f == nil {
		return nil, eris.Errorf("dataset: no fetcher for remote %s", location)
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse url %s", location)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = "dataset.csv"
	}

	dir, err := os.MkdirTemp("", "quakeboard-*")
	if err != nil {
		return nil, eris.Wrap(err, "dataset: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	local := filepath.Join(dir, name)
	if _, err := f.DownloadToFile(ctx, location, local); err != nil {
		return nil, eris.Wrapf(err, "dataset: download %s", location)
	}

	ds, err := LoadFile(ctx, local, opts)
	if err != nil {
		return nil, err
	}
	ds.Source = location
	return ds, nil
}
