package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	cfg := Default()
	cfg.CollectionMonths = 6
	cfg.CategoryOrder = []string{"trade", "tk"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.CollectionMonths)
	assert.Equal(t, []string{"trade", "tk"}, loaded.CategoryOrder)
}

func TestLoadNormalizesZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"collectionMonths":0,"backupRetentionDays":-1}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().CollectionMonths, cfg.CollectionMonths)
	assert.Equal(t, Default().BackupRetentionDays, cfg.BackupRetentionDays)
}

func TestCompanyForFile(t *testing.T) {
	cfg := Default()

	co, ok := cfg.CompanyForFile("/raw/2025/DNI_sales_20250801_20250831.xlsx")
	require.True(t, ok)
	assert.Equal(t, "DNI", co.Name)

	_, ok = cfg.CompanyForFile("unrelated_download.xlsx")
	assert.False(t, ok)
}

func TestCompanyByName(t *testing.T) {
	cfg := Default()

	co, ok := cfg.CompanyByName("DND")
	require.True(t, ok)
	assert.True(t, co.UseStaffLookup)

	_, ok = cfg.CompanyByName("nobody")
	assert.False(t, ok)
}
