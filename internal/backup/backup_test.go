package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tailor-backend/internal/config"
	"tailor-backend/internal/docstore"
	"tailor-backend/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey string
	pages   []*s3.ListObjectsV2Output
}

func (b *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if b.failKey != "" && strings.HasSuffix(key, b.failKey) {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[key] = body
	return &s3.PutObjectOutput{}, nil
}

func (b *fakeBucket) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if in.ContinuationToken == nil {
		return b.pages[0], nil
	}
	return b.pages[1], nil
}

func newExporter(t *testing.T, bucket *fakeBucket) (*Exporter, docstore.Client) {
	t.Helper()
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	_, err := store.Insert(ctx, models.CustomersCollection, map[string]any{"userId": "u1", "name": "Ada"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, models.CustomersCollection, map[string]any{"userId": "u2", "name": "Grace"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, models.OrdersCollection, map[string]any{"userId": "u1", "style": "Kurta"})
	require.NoError(t, err)

	e := NewExporter(store, bucket, config.BackupConfig{Bucket: "backups", Prefix: "tailor"})
	e.Collections = []string{models.CustomersCollection, models.OrdersCollection, models.PaymentsCollection}
	return e, store
}

func TestExporter_Run(t *testing.T) {
	bucket := &fakeBucket{}
	e, _ := newExporter(t, bucket)

	keys, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 3)
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, "tailor/"), k)
	}

	var customers Snapshot
	for key, body := range bucket.objects {
		if strings.HasSuffix(key, "/customers.json") {
			require.NoError(t, json.Unmarshal(body, &struct {
				Collection *string `json:"collection"`
				Count      *int    `json:"count"`
			}{&customers.Collection, &customers.Count}))
		}
	}
	assert.Equal(t, models.CustomersCollection, customers.Collection)
	assert.Equal(t, 2, customers.Count)
}

func TestExporter_RunReportsUploadFailure(t *testing.T) {
	bucket := &fakeBucket{failKey: "/orders.json"}
	e, _ := newExporter(t, bucket)

	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export orders")
}

func TestExporter_ListPagesNewestFirst(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(6 * time.Hour)
	bucket := &fakeBucket{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []types.Object{{Key: aws.String("tailor/a/customers.json"), Size: aws.Int64(10), LastModified: &older}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents:    []types.Object{{Key: aws.String("tailor/b/customers.json"), Size: aws.Int64(12), LastModified: &newer}},
			IsTruncated: aws.Bool(false),
		},
	}}
	e := NewExporter(docstore.NewMemoryStore(), bucket, config.BackupConfig{Bucket: "backups", Prefix: "tailor"})

	objects, err := e.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "tailor/b/customers.json", objects[0].Key)
	assert.Equal(t, int64(12), objects[0].Size)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	e := NewExporter(docstore.NewMemoryStore(), &fakeBucket{}, config.BackupConfig{Bucket: "b"})
	s := NewScheduler(e, time.Hour)
	s.Start()
	s.Stop()
	s.Stop()
}

func TestNewS3Client_RequiresBucket(t *testing.T) {
	_, err := NewS3Client(context.Background(), config.BackupConfig{})
	assert.Error(t, err)
}
