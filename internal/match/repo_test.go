package match

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// The sqlite dialect silently drops locking clauses, so the generated SQL is
// inspected through a dry-run postgres session instead.
func newDryRunPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestFindItemTakesRowLock(t *testing.T) {
	db := newDryRunPostgresDB(t)

	var captured string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		captured = tx.Statement.SQL.String()
	}))

	repo := NewRepository(db)
	_, err := repo.FindItem(context.Background(), uuid.New())
	require.NoError(t, err)
	require.True(t, strings.Contains(captured, "FOR UPDATE"),
		"expected a locked read, got: %s", captured)
}
