// Package dbtest opens throwaway sqlite stores for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/dao/database"
	"sms_campaign_server/internal/dao/database/repository"

	"github.com/stretchr/testify/require"
)

// New returns repositories over a fresh migrated sqlite file in t's temp dir.
func New(t testing.TB) *repository.Repositories {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		DatabaseName: filepath.Join(t.TempDir(), "test.db"),
	}
	repos, err := database.Init(cfg, "test")
	require.NoError(t, err)

	sqlDB, err := repos.DB().DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return repos
}
