package s3

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/JonMunkholm/proker/internal/store"
	"github.com/JonMunkholm/proker/internal/store/storetest"
)

// Set PROKER_TEST_S3_BUCKET and PROKER_TEST_S3_ENDPOINT (e.g. MinIO) to run these.
func TestStore(t *testing.T) {
	bucket := os.Getenv("PROKER_TEST_S3_BUCKET")
	endpoint := os.Getenv("PROKER_TEST_S3_ENDPOINT")
	if bucket == "" || endpoint == "" {
		t.Skip("PROKER_TEST_S3_BUCKET and PROKER_TEST_S3_ENDPOINT not set")
	}

	region := os.Getenv("PROKER_TEST_S3_REGION")
	if region == "" {
		region = "us-east-1"
	}

	storetest.Run(t, func(t *testing.T) store.SnapshotStore {
		s, err := New(context.Background(), Options{
			Bucket:   bucket,
			Region:   region,
			Prefix:   "test-" + uuid.NewString() + "/",
			Endpoint: endpoint,
		})
		require.NoError(t, err)
		return s
	})
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.ErrorContains(t, err, "bucket is required")
}

func TestObjectKeyRoundTrip(t *testing.T) {
	s := &Store{prefix: "snapshots/"}
	snap := store.Prepare(store.Snapshot{
		Sheet:     "Kluster Medika",
		FetchedAt: time.Date(2024, 7, 1, 8, 30, 0, 123456789, time.UTC),
	})

	key := s.objectKey(snap)
	assert.Regexp(t, `^snapshots/Kluster%20Medika/\d{20}_[0-9a-f-]{36}\.csv$`, key)

	fetchedAt, id, ok := parseKey(key)
	require.True(t, ok)
	assert.Equal(t, snap.ID, id)
	assert.True(t, fetchedAt.Equal(snap.FetchedAt), "fetchedAt = %v", fetchedAt)
}

func TestObjectKeysSortByFetchTime(t *testing.T) {
	s := &Store{}
	early := store.Prepare(store.Snapshot{Sheet: "Umum", FetchedAt: time.Unix(9, 0)})
	late := store.Prepare(store.Snapshot{Sheet: "Umum", FetchedAt: time.Unix(10, 0)})

	assert.Less(t, s.objectKey(early), s.objectKey(late))
}

func TestParseKey_Invalid(t *testing.T) {
	for _, key := range []string{
		"snapshots/Umum/",
		"snapshots/Umum/readme.txt",
		"snapshots/Umum/123.csv",
		"snapshots/Umum/abc_" + uuid.NewString() + ".csv",
		"snapshots/Umum/123_not-a-uuid.csv",
	} {
		_, _, ok := parseKey(key)
		assert.False(t, ok, key)
	}
}

func TestFromObject(t *testing.T) {
	id := uuid.New()
	key := "p/Umum/00000000000000000042_" + id.String() + ".csv"

	snap, err := fromObject("Umum", key, map[string]string{metaGID: "923191782", metaRowCount: "7"})
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, "Umum", snap.Sheet)
	assert.Equal(t, "923191782", snap.GID)
	assert.Equal(t, 7, snap.RowCount)
	assert.Equal(t, int64(42), snap.FetchedAt.UnixNano())
	assert.Empty(t, snap.Body)

	_, err = fromObject("Umum", "p/Umum/bad.csv", nil)
	assert.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&s3types.NoSuchKey{}))
	assert.True(t, isNotFound(&s3types.NotFound{}))
	assert.True(t, isNotFound(errors.New("api error NotFound: Not Found")))
	assert.False(t, isNotFound(errors.New("access denied")))
}
