package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "query", "views", "export", "snapshot"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "quakeboard", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	flag = serveCmd.Flags().Lookup("snapshot")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestQueryCommand_Flags(t *testing.T) {
	for _, name := range []string{"plate", "city", "prediction", "year", "month", "from", "to", "columns", "stat", "records"} {
		assert.NotNil(t, queryCmd.Flags().Lookup(name), "query should have --%s flag", name)
	}
	assert.Equal(t, "mean", queryCmd.Flags().Lookup("stat").DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("out")
	require.NotNil(t, flag, "export command should have --out flag")
	assert.NotNil(t, exportCmd.Flags().Lookup("city"))
}

func TestViewsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range viewsCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"list", "import", "delete"} {
		assert.True(t, names[name], "views should have subcommand %q", name)
	}
	assert.NotNil(t, viewsImportCmd.Flags().Lookup("file"))
}

func TestFilterFlags_Spec(t *testing.T) {
	f := filterFlags{
		plates: []string{"Nazca"},
		cities: []string{"Arica", "Iquique"},
		year:   2023,
		from:   "2023-01-01",
	}
	spec, err := f.spec()
	require.NoError(t, err)
	assert.Equal(t, []string{"Nazca"}, spec.Plates)
	assert.Equal(t, []string{"Arica", "Iquique"}, spec.Cities)
	require.NotNil(t, spec.Year)
	assert.Equal(t, 2023, *spec.Year)
	assert.Nil(t, spec.Month)
	require.NotNil(t, spec.DateRange)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), spec.DateRange.Start)

	empty, err := (&filterFlags{}).spec()
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = (&filterFlags{to: "yesterday"}).spec()
	assert.Error(t, err)
}

func TestConfigModes(t *testing.T) {
	assert.Equal(t, []string{"query"}, configModes(queryCmd))
	assert.Equal(t, []string{"query"}, configModes(exportCmd))
	assert.Equal(t, []string{"query", "views"}, configModes(snapshotCmd))
	assert.Equal(t, []string{"views"}, configModes(viewsListCmd), "inherited from views")
	assert.Nil(t, configModes(serveCmd), "serve validates after flag overrides")
	assert.Nil(t, configModes(rootCmd))
}

func TestFirstRune(t *testing.T) {
	assert.Equal(t, rune(0), firstRune(""))
	assert.Equal(t, ';', firstRune(";"))
	assert.Equal(t, 'ñ', firstRune("ñ"))
	assert.Equal(t, rune(0), firstRune("\xff"))
}

const testCSV = `City,Name_Plate,Year,Month,Date,Longitude,Latitude,Count_Quakes,Magnitude_Mean,Is_Prediction
Santiago,Nazca,2023,1,2023-01-01,-70.65,-33.45,5,3.1,No
Santiago,Nazca,2024,1,2024-01-01,-70.65,-33.45,7,3.5,No
`

// setupWorkdir changes into a temp dir holding the test dataset.
func setupWorkdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quakes.csv"), []byte(testCSV), 0o644))
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	t.Setenv("QUAKEBOARD_DATASET_PATH", filepath.Join(dir, "quakes.csv"))
	t.Setenv("QUAKEBOARD_STORE_DATABASE_URL", filepath.Join(dir, "views.db"))
	t.Setenv("QUAKEBOARD_LOG_LEVEL", "error")
	return dir
}

func TestQueryCommand_Run(t *testing.T) {
	setupWorkdir(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"query", "--columns", "count_quakes"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var res struct {
		Count     int `json:"count"`
		Aggregate struct {
			Values map[string]*float64 `json:"values"`
		} `json:"aggregate"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 2, res.Count)
	require.NotNil(t, res.Aggregate.Values["count_quakes"])
	assert.Equal(t, 6.0, *res.Aggregate.Values["count_quakes"])
}

func TestExportCommand_Run(t *testing.T) {
	dir := setupWorkdir(t)
	out := filepath.Join(dir, "grid.xlsx")

	rootCmd.SetArgs([]string{"export", "--out", out})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	// header + 2 pinned + 2 data + mean + median
	assert.Len(t, f.Sheets[0].Rows, 7)
}

func TestSnapshotAndViews_Run(t *testing.T) {
	dir := setupWorkdir(t)
	viewsFile := filepath.Join(dir, "views.yaml")
	require.NoError(t, os.WriteFile(viewsFile, []byte("views:\n  - name: Nazca\n    spec:\n      plates: [Nazca]\n"), 0o644))

	rootCmd.SetArgs([]string{"snapshot"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"views", "import", "--file", viewsFile})
	require.NoError(t, rootCmd.Execute())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"views", "list"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var views []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Nazca", views[0].Name)

	rootCmd.SetArgs([]string{"views", "delete", views[0].ID})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"views", "delete", views[0].ID})
	assert.Error(t, rootCmd.Execute())
}

func TestQueryCommand_AggregatesFilteredRecords(t *testing.T) {
	setupWorkdir(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"query", "--year", "2024", "--columns", "count_quakes", "--stat", "sum"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		queryFilters = filterFlags{}
		queryColumns = nil
		queryStat = "mean"
	})
	require.NoError(t, rootCmd.Execute())

	var res struct {
		Count     int `json:"count"`
		Aggregate struct {
			Values map[string]*float64 `json:"values"`
		} `json:"aggregate"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 1, res.Count)
	require.NotNil(t, res.Aggregate.Values["count_quakes"])
	assert.Equal(t, 7.0, *res.Aggregate.Values["count_quakes"])
}

func TestQueryCommand_InvalidConfig(t *testing.T) {
	setupWorkdir(t)
	t.Setenv("QUAKEBOARD_DATASET_DELIMITER", ";;")

	rootCmd.SetArgs([]string{"query"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.delimiter must be a single character")
}
