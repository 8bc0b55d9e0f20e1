// Package backup exports the document collections as JSON snapshots to an
// S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tailor-backend/internal/config"
	"tailor-backend/internal/docstore"
	"tailor-backend/internal/metrics"
	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
	"tailor-backend/internal/timeutil"
)

// ObjectStore is the subset of the S3 client used for backups.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// NewS3Client builds a client from static credentials. A custom endpoint
// selects R2 or MinIO instead of AWS.
func NewS3Client(ctx context.Context, cfg config.BackupConfig) (*s3.Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("backup bucket not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure s3 client: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Snapshot is one collection's contents at export time.
type Snapshot struct {
	Collection string              `json:"collection"`
	ExportedAt time.Time           `json:"exportedAt"`
	Count      int                 `json:"count"`
	Documents  []docstore.Document `json:"documents"`
}

// Object is a stored backup file.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

type Exporter struct {
	Store       docstore.Client
	Objects     ObjectStore
	Bucket      string
	Prefix      string
	Collections []string
	// Concurrency bounds parallel collection exports.
	Concurrency int

	log *zap.Logger
}

func NewExporter(store docstore.Client, objects ObjectStore, cfg config.BackupConfig) *Exporter {
	return &Exporter{
		Store:       store,
		Objects:     objects,
		Bucket:      cfg.Bucket,
		Prefix:      cfg.Prefix,
		Collections: models.Collections,
		Concurrency: 3,
		log:         zap.L().With(zap.String("component", "backup")),
	}
}

// Run exports every collection under a shared timestamped folder and returns
// the keys written. A failed collection fails the run; collections already
// uploaded stay in the bucket.
func (e *Exporter) Run(ctx context.Context) ([]string, error) {
	started := timeutil.Now()
	folder := path.Join(e.Prefix, started.UTC().Format("20060102_150405"))

	var (
		mu   sync.Mutex
		keys []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Concurrency, 1))
	for _, collection := range e.Collections {
		collection := collection
		g.Go(func() error {
			key, size, err := e.exportCollection(gctx, folder, collection, started)
			if err != nil {
				return fmt.Errorf("export %s: %w", collection, err)
			}
			e.log.Debug("collection exported", zap.String("key", key), zap.Int("bytes", size))
			mu.Lock()
			keys = append(keys, key)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	sort.Strings(keys)

	if err != nil {
		metrics.BackupRuns.WithLabelValues("failure").Inc()
		e.log.Error("backup failed", zap.Error(err), zap.Strings("uploaded", keys))
		return keys, err
	}
	metrics.BackupRuns.WithLabelValues("success").Inc()
	e.log.Info("backup completed",
		zap.String("folder", folder),
		zap.Int("collections", len(keys)),
		zap.Duration("took", time.Since(started)))
	return keys, nil
}

func (e *Exporter) exportCollection(ctx context.Context, folder, collection string, at time.Time) (string, int, error) {
	docs, err := e.Store.Fetch(ctx, query.New(collection))
	if err != nil {
		return "", 0, err
	}
	body, err := json.Marshal(Snapshot{
		Collection: collection,
		ExportedAt: at,
		Count:      len(docs),
		Documents:  docs,
	})
	if err != nil {
		return "", 0, err
	}

	key := path.Join(folder, collection+".json")
	_, err = e.Objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("upload %s: %w", key, err)
	}
	return key, len(body), nil
}

// List returns stored backup files, newest first.
func (e *Exporter) List(ctx context.Context) ([]Object, error) {
	var (
		out   []Object
		token *string
	)
	for {
		page, err := e.Objects.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(e.Bucket),
			Prefix:            aws.String(e.Prefix + "/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range page.Contents {
			o := Object{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			out = append(out, o)
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastModified.After(out[j].LastModified) })
	return out, nil
}

// Scheduler runs the exporter on a fixed interval.
type Scheduler struct {
	exporter *Exporter
	interval time.Duration
	timeout  time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewScheduler(exporter *Exporter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{
		exporter: exporter,
		interval: interval,
		timeout:  5 * time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start waits one interval before the first run so a restart loop does not
// flood the bucket.
func (s *Scheduler) Start() {
	s.exporter.log.Info("backup scheduler started", zap.Duration("interval", s.interval))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				return
			}
		}
	}()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.exporter.Run(ctx)
}

func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}
