package database

import (
	"testing"

	"mystore-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, isPostgresDSN("postgres://u:p@localhost/pos"))
	assert.True(t, isPostgresDSN("host=localhost user=pos dbname=pos"))
	assert.False(t, isPostgresDSN("mystore.db"))
	assert.False(t, isPostgresDSN("file:x?mode=memory&cache=shared"))
}

func TestSequenceResetSQL(t *testing.T) {
	assert.Equal(t,
		"SELECT setval(pg_get_serial_sequence('clients', 'id'), (SELECT COALESCE(MAX(id), 1) FROM clients))",
		sequenceResetSQL("clients"))
}

func TestMigrateSeedsReservedRowsAndNextClientID(t *testing.T) {
	db, err := Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	// idempotent
	require.NoError(t, Migrate(db))

	var walkIn models.Client
	require.NoError(t, db.First(&walkIn, models.WalkInClientID).Error)
	assert.Equal(t, "C/F", walkIn.TaxID)

	c := models.Client{TaxID: "1234567-8", FirstName: "María", LastName: "López"}
	require.NoError(t, db.Create(&c).Error)
	assert.Equal(t, uint(2), c.ID)
}
