package main

import (
	"encoding/json"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/sells-group/quakeboard/internal/api"
	"github.com/sells-group/quakeboard/internal/model"
	"github.com/sells-group/quakeboard/internal/query"
)

var (
	queryFilters filterFlags
	queryColumns []string
	queryStat    string
	queryRecords bool
)

var queryCmd = &cobra.Command{
	Use:         "query",
	Short:       "Filter the dataset and print an aggregate as JSON",
	Annotations: map[string]string{configModesKey: "query"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		spec, err := queryFilters.spec()
		if err != nil {
			return err
		}
		q := url.Values{"columns": queryColumns, "stat": {queryStat}}
		cols, err := api.ParseColumns(q)
		if err != nil {
			return err
		}
		stat, err := api.ParseStatistic(q)
		if err != nil {
			return err
		}

		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		records, err := engine.Filter(spec)
		if err != nil {
			return err
		}
		res, err := query.Aggregate(records, cols, stat)
		if err != nil {
			return err
		}

		out := struct {
			Spec      model.FilterSpec      `json:"spec"`
			Count     int                   `json:"count"`
			Aggregate model.AggregateResult `json:"aggregate"`
			Records   []model.Record        `json:"records,omitempty"`
		}{Spec: spec, Count: len(records), Aggregate: res}
		if queryRecords {
			out.Records = records
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	queryFilters.register(queryCmd)
	queryCmd.Flags().StringSliceVar(&queryColumns, "columns", nil, "numeric columns to aggregate (default count_quakes,magnitude_mean)")
	queryCmd.Flags().StringVar(&queryStat, "stat", "mean", "statistic: mean, median, min, max, sum")
	queryCmd.Flags().BoolVar(&queryRecords, "records", false, "include the matching records in the output")
	rootCmd.AddCommand(queryCmd)
}
