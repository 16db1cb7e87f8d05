// Package s3 is the object storage SnapshotStore backend (S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/JonMunkholm/proker/internal/store"
)

// deleteBatch is the S3 limit on keys per DeleteObjects call.
const deleteBatch = 1000

const (
	metaGID      = "gid"
	metaRowCount = "row-count"
)

var _ store.SnapshotStore = (*Store)(nil)

// Options configures the S3 backend.
type Options struct {
	Bucket   string // required
	Region   string // e.g. "ap-southeast-1"
	Prefix   string // key prefix, e.g. "snapshots/"
	Endpoint string // custom endpoint for MinIO compatibility
}

// Store keeps one object per snapshot.
//
// Object layout:
//
//	<prefix><escaped sheet>/<fetched_at unix nanos, 20 digits>_<id>.csv
//
// Keys of a sheet sort in fetch order. GID and row count are object metadata.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3-backed Store. Credentials come from the default AWS
// chain (env vars, shared config, instance role).
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 snapshot store: bucket is required")
	}

	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	return &Store{
		client: s3.NewFromConfig(cfg, s3Opts...),
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

func (s *Store) Save(ctx context.Context, snap store.Snapshot) (store.Snapshot, error) {
	snap = store.Prepare(snap)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(snap)),
		Body:        bytes.NewReader([]byte(snap.Body)),
		ContentType: aws.String("text/csv; charset=utf-8"),
		Metadata: map[string]string{
			metaGID:      url.QueryEscape(snap.GID),
			metaRowCount: strconv.Itoa(snap.RowCount),
		},
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot store: save %s: %w", snap.Sheet, err)
	}
	return snap, nil
}

func (s *Store) Latest(ctx context.Context, sheet string) (store.Snapshot, error) {
	keys, err := s.listKeys(ctx, sheet)
	if err != nil {
		return store.Snapshot{}, err
	}
	if len(keys) == 0 {
		return store.Snapshot{}, store.ErrNotFound
	}
	key := keys[len(keys)-1]

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return store.Snapshot{}, store.ErrNotFound
		}
		return store.Snapshot{}, fmt.Errorf("snapshot store: latest %s: %w", sheet, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot store: read %s: %w", key, err)
	}

	snap, err := fromObject(sheet, key, out.Metadata)
	if err != nil {
		return store.Snapshot{}, err
	}
	snap.Body = string(body)
	return snap, nil
}

func (s *Store) History(ctx context.Context, sheet string, limit int) ([]store.Snapshot, error) {
	keys, err := s.listKeys(ctx, sheet)
	if err != nil {
		return nil, err
	}
	slices.Reverse(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]store.Snapshot, 0, len(keys))
	for _, key := range keys {
		head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				continue // pruned concurrently
			}
			return nil, fmt.Errorf("snapshot store: history %s: %w", sheet, err)
		}

		snap, err := fromObject(sheet, key, head.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func (s *Store) Prune(ctx context.Context, sheet string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	keys, err := s.listKeys(ctx, sheet)
	if err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}
	stale := keys[:len(keys)-keep]

	var removed int64
	for batch := range slices.Chunk(stale, deleteBatch) {
		objects := make([]s3types.ObjectIdentifier, len(batch))
		for i, key := range batch {
			objects[i] = s3types.ObjectIdentifier{Key: aws.String(key)}
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return removed, fmt.Errorf("snapshot store: prune %s: %w", sheet, err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return removed + int64(len(batch)-len(out.Errors)),
				fmt.Errorf("snapshot store: prune %s: %s: %s", sheet, aws.ToString(first.Key), aws.ToString(first.Message))
		}
		removed += int64(len(batch))
	}
	return removed, nil
}

// Close is a no-op for the S3 store.
func (s *Store) Close() error {
	return nil
}

// listKeys returns the snapshot keys of sheet, oldest first.
func (s *Store) listKeys(ctx context.Context, sheet string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.sheetPrefix(sheet)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot store: list %s: %w", sheet, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if _, _, ok := parseKey(key); ok {
				keys = append(keys, key)
			}
		}
	}

	slices.Sort(keys)
	return keys, nil
}

func (s *Store) sheetPrefix(sheet string) string {
	return s.prefix + url.PathEscape(sheet) + "/"
}

func (s *Store) objectKey(snap store.Snapshot) string {
	return s.sheetPrefix(snap.Sheet) + fmt.Sprintf("%020d_%s.csv", snap.FetchedAt.UnixNano(), snap.ID)
}

// parseKey reads the fetch time and ID from an object key.
func parseKey(key string) (time.Time, uuid.UUID, bool) {
	name, ok := strings.CutSuffix(path.Base(key), ".csv")
	if !ok {
		return time.Time{}, uuid.Nil, false
	}
	ts, id, ok := strings.Cut(name, "_")
	if !ok {
		return time.Time{}, uuid.Nil, false
	}

	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}, uuid.Nil, false
	}
	return time.Unix(0, nanos).UTC(), parsed, true
}

func fromObject(sheet, key string, meta map[string]string) (store.Snapshot, error) {
	fetchedAt, id, ok := parseKey(key)
	if !ok {
		return store.Snapshot{}, fmt.Errorf("snapshot store: malformed key %q", key)
	}

	gid, err := url.QueryUnescape(meta[metaGID])
	if err != nil {
		gid = meta[metaGID]
	}
	rows, _ := strconv.Atoi(meta[metaRowCount])

	return store.Snapshot{
		ID:        id,
		Sheet:     sheet,
		GID:       gid,
		RowCount:  rows,
		FetchedAt: fetchedAt,
	}, nil
}

// isNotFound checks whether the error indicates a missing S3 object.
func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	// Some S3-compatible services return a generic "NotFound" status.
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}
