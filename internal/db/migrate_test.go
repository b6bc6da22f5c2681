package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/tap-menu/internal/models"
)

func TestSeedIdempotent(t *testing.T) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	Seed(conn)

	count := func(model any) int64 {
		var n int64
		require.NoError(t, conn.Model(model).Count(&n).Error)
		return n
	}
	categories := count(&models.MenuCategory{})
	items := count(&models.MenuItem{})
	tables := count(&models.Table{})
	require.Positive(t, categories)
	require.Positive(t, items)
	require.Positive(t, tables)

	// Every seeded item is orderable and categorized.
	var seeded []models.MenuItem
	require.NoError(t, conn.Find(&seeded).Error)
	for _, it := range seeded {
		require.True(t, it.IsAvailable, it.Name)
		require.NotNil(t, it.CategoryID, it.Name)
	}
	var seededTables []models.Table
	require.NoError(t, conn.Find(&seededTables).Error)
	for _, tb := range seededTables {
		require.True(t, strings.HasPrefix(tb.TrackingCode, "table_"))
	}

	// A second run inserts nothing new.
	Seed(conn)
	require.Equal(t, categories, count(&models.MenuCategory{}))
	require.Equal(t, items, count(&models.MenuItem{}))
	require.Equal(t, tables, count(&models.Table{}))
}
