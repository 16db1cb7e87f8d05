// Package storetest holds behaviour tests shared by every SnapshotStore.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proker/internal/store"
)

// Run exercises a SnapshotStore. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.SnapshotStore) {
	t.Helper()

	base := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	snap := func(sheet string, minutes int, body string) store.Snapshot {
		return store.Snapshot{
			Sheet:     sheet,
			GID:       "923191782",
			Body:      body,
			RowCount:  2,
			FetchedAt: base.Add(time.Duration(minutes) * time.Minute),
		}
	}

	t.Run("SaveAssignsID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, snap("Interdisipliner", 0, "a\n1"))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, saved.ID)
	})

	t.Run("LatestMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Latest(context.Background(), "Kluster Agro")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("LatestReturnsNewest", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Save(ctx, snap("Interdisipliner", 0, "old"))
		require.NoError(t, err)
		newest, err := s.Save(ctx, snap("Interdisipliner", 10, "new"))
		require.NoError(t, err)
		_, err = s.Save(ctx, snap("Kluster Medika", 20, "other"))
		require.NoError(t, err)

		got, err := s.Latest(ctx, "Interdisipliner")
		require.NoError(t, err)
		assert.Equal(t, newest.ID, got.ID)
		assert.Equal(t, "new", got.Body)
		assert.Equal(t, "923191782", got.GID)
		assert.Equal(t, 2, got.RowCount)
		assert.True(t, got.FetchedAt.Equal(base.Add(10*time.Minute)), "FetchedAt = %v", got.FetchedAt)
	})

	t.Run("BodyRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		body := "Judul,Tujuan\n\"Bank Sampah, Desa\",\"Mengurangi \"\"sampah\"\"\"\n"
		_, err := s.Save(ctx, snap("Kluster Saintek", 0, body))
		require.NoError(t, err)

		got, err := s.Latest(ctx, "Kluster Saintek")
		require.NoError(t, err)
		assert.Equal(t, body, got.Body)
	})

	t.Run("HistoryNewestFirstWithoutBody", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := s.Save(ctx, snap("Kluster Soshum", i, "body"))
			require.NoError(t, err)
		}

		all, err := s.History(ctx, "Kluster Soshum", 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.True(t, all[0].FetchedAt.After(all[1].FetchedAt))
		assert.True(t, all[1].FetchedAt.After(all[2].FetchedAt))
		for _, h := range all {
			assert.Empty(t, h.Body)
		}

		limited, err := s.History(ctx, "Kluster Soshum", 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)

		none, err := s.History(ctx, "Kluster Agro", 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("PruneKeepsNewest", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var last store.Snapshot
		for i := 0; i < 5; i++ {
			saved, err := s.Save(ctx, snap("Kluster Agro", i, "body"))
			require.NoError(t, err)
			last = saved
		}
		_, err := s.Save(ctx, snap("Kluster Medika", 0, "keep me"))
		require.NoError(t, err)

		removed, err := s.Prune(ctx, "Kluster Agro", 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)

		left, err := s.History(ctx, "Kluster Agro", 0)
		require.NoError(t, err)
		require.Len(t, left, 2)
		assert.Equal(t, last.ID, left[0].ID)

		other, err := s.History(ctx, "Kluster Medika", 0)
		require.NoError(t, err)
		assert.Len(t, other, 1)

		removed, err = s.Prune(ctx, "Kluster Agro", 10)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
