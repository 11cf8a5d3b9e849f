package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/archy/internal/shared/logger"
)

func newTestEnforcer(t *testing.T) (*Enforcer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	e, err := NewEnforcer(db, logger.NewNopLogger())
	require.NoError(t, err)
	return e, db
}

func TestEnforcer_CanArchive(t *testing.T) {
	e, _ := newTestEnforcer(t)
	require.NoError(t, e.SyncArchiveRoles([]string{"Manager", "Director of Repairs"}))

	ctx := context.Background()
	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"allowed role", []string{"Tenant", "Manager"}, true},
		{"case sensitive", []string{"manager"}, false},
		{"no roles", nil, false},
		{"other roles", []string{"Tenant"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := e.CanArchive(ctx, tt.roles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEnforcer_SyncArchiveRolesReplaces(t *testing.T) {
	e, db := newTestEnforcer(t)
	require.NoError(t, e.SyncArchiveRoles([]string{"Manager", "Asst Director"}))
	require.NoError(t, e.SyncArchiveRoles([]string{"Manager", "Director of Maintenance"}))

	roles, err := e.ArchiveRoles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Manager", "Director of Maintenance"}, roles)

	// Policies survive a reload from the database.
	reloaded, err := NewEnforcer(db, logger.NewNopLogger())
	require.NoError(t, err)
	ok, err := reloaded.CanArchive(context.Background(), []string{"Director of Maintenance"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = reloaded.CanArchive(context.Background(), []string{"Asst Director"})
	require.NoError(t, err)
	assert.False(t, ok)
}
