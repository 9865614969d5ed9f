package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cybershield/internal/config"
	"cybershield/internal/importer"
	"cybershield/internal/metrics"
	"cybershield/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cities:\n  1: 2\n"), 0o644))

	opts, err := ImportOptions(config.ImportOptions{Policy: "tolerant", CityCountryMap: path})
	require.NoError(t, err)
	assert.Equal(t, importer.AllowOrphan, opts.Policy)
	assert.Equal(t, map[int]int{1: 2}, opts.CityCountries)

	opts, err = ImportOptions(config.ImportOptions{Policy: "strict", LegacyCityCountry: true, CityCountryMap: "/does/not/matter"})
	require.NoError(t, err)
	assert.True(t, opts.LegacyCityCountry)
	assert.Nil(t, opts.CityCountries)

	_, err = ImportOptions(config.ImportOptions{Policy: "strict", CityCountryMap: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestSourceSelection(t *testing.T) {
	cfg := &config.Config{Import: config.ImportOptions{Source: "dir", Root: "/srv/import"}}
	src, err := Source(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "dir:/srv/import", src.String())

	cfg.Import.Source = "s3"
	_, err = Source(context.Background(), cfg)
	assert.Error(t, err, "bucket is required")

	cfg.Import.Source = "ftp"
	_, err = Source(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewWithSQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseOptions{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "app.db")},
		Import:   config.ImportOptions{Source: "dir", Root: t.TempDir(), Policy: "strict"},
		LogLevel: "error",
	}
	app, err := New(context.Background(), cfg, metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.DB.Migrator().HasTable(&models.Event{}))
	assert.Equal(t, importer.RequireEvent, app.Importer.Options().Policy)
}
