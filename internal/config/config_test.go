package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "secret")

	c, err := Load(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "postgres", c.Database.Driver)
	require.Equal(t, "dir", c.Import.Source)
	require.Equal(t, "strict", c.Import.Policy)
	require.False(t, c.Import.LegacyCityCountry)
	require.Equal(t, time.Duration(0), c.Import.Schedule)
	require.Equal(t, ":8080", c.HTTPAddr)
	require.Equal(t, logrus.InfoLevel, c.Logger().GetLevel())
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "DB_DRIVER=sqlite\nDB_DSN=file::memory:\nIMPORT_POLICY=tolerant\nIMPORT_SCHEDULE=30m\n" +
		"LOG_LEVEL=debug\nBOT_ADMIN_CHAT_IDS=1,2\nGSHEETS_FILES=a.xlsx=sheet1,b.xlsx=sheet2\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	for _, k := range []string{"DB_DRIVER", "DB_DSN", "IMPORT_POLICY", "IMPORT_SCHEDULE", "LOG_LEVEL", "BOT_ADMIN_CHAT_IDS", "GSHEETS_FILES"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	c, err := Load(envFile)
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.Database.Driver)
	require.Equal(t, "tolerant", c.Import.Policy)
	require.Equal(t, 30*time.Minute, c.Import.Schedule)
	require.Equal(t, []int64{1, 2}, c.Telegram.AdminChatIDs)
	require.Equal(t, map[string]string{"a.xlsx": "sheet1", "b.xlsx": "sheet2"}, c.Sheets.Files)
	require.Equal(t, logrus.DebugLevel, c.Logger().GetLevel())
}

func TestLoad_RejectsUnknownPolicy(t *testing.T) {
	t.Setenv("IMPORT_POLICY", "lenient")
	_, err := Load(filepath.Join(t.TempDir(), "none"))
	require.ErrorContains(t, err, "IMPORT_POLICY")
}

func TestLoadCityCountryMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cities:\n  1: 1\n  2: 1\n  3: 2\n"), 0o600))

	m, err := LoadCityCountryMap(path)
	require.NoError(t, err)
	require.Equal(t, CityCountryMap{1: 1, 2: 1, 3: 2}, m)

	empty, err := LoadCityCountryMap("")
	require.NoError(t, err)
	require.Empty(t, empty)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cities:\n  0: 1\n"), 0o600))
	_, err = LoadCityCountryMap(bad)
	require.Error(t, err)
}
