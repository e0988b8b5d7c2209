package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		kind string
		path string
	}{
		{"sqlite", filepath.Join(dir, "j.db")},
		{"csv", filepath.Join(dir, "j.csv")},
		{"memory", ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			h, err := Open(tt.kind, tt.path)
			require.NoError(t, err)
			t.Cleanup(func() { _ = h.Close() })

			require.NoError(t, h.RecordOrder(testRecord("b", "other", at.Add(time.Hour), 1, 0.9)))
			require.NoError(t, h.RecordOrder(testRecord("a", "geo", at, 1, 0.9)))

			orders, err := h.OrdersForStrategy(context.Background(), "geo")
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, "a", orders[0].ID)

			recs, err := Records(context.Background(), h)
			require.NoError(t, err)
			assert.Len(t, recs, 2)
		})
	}

	_, err := Open("postgres", "")
	assert.ErrorContains(t, err, "unknown journal type")
}
