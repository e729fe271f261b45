package memstore

import (
	"context"
	"testing"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/backend/backendtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backend.Backend { return New(nil) })
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(nil)
	snap := s.Snapshot()
	snap.Products[0].Stock = -1

	list, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, backend.Seed().Products[0].Stock, list[0].Stock)
}
