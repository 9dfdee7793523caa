package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store is an S3-backed BundleStore. Conditional writes use
// IfNoneMatch: "*" so a racing second writer for the same bundle id gets a
// PreconditionFailed error rather than silently overwriting.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3StoreConfig configures an S3-backed bundle store.
type S3StoreConfig struct {
	Bucket   string
	Region   string
	Endpoint string // custom endpoint, for MinIO/LocalStack
	Prefix   string
}

// NewS3Store creates an S3-backed bundle store.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("artifacts: loading AWS config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, clientOpts),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *S3Store) key(k string) string {
	return joinKey(s.prefix, k)
}

func (s *S3Store) PutBundle(ctx context.Context, bundleID string, data []byte) error {
	key := s.key(bundleKey("", bundleID))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/gzip"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr interface{ ErrorCode() string }
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return ErrAlreadyExists
			}
		}
		return fmt.Errorf("artifacts: s3 put failed: %w", err)
	}
	return nil
}

func (s *S3Store) GetBundle(ctx context.Context, bundleID string) ([]byte, error) {
	key := s.key(bundleKey("", bundleID))
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("artifacts: s3 get failed for %s: %w", bundleID, err)
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}

func (s *S3Store) BundleExists(ctx context.Context, bundleID string) (bool, error) {
	key := s.key(bundleKey("", bundleID))
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (s *S3Store) LinkRunBundle(ctx context.Context, runID, bundleID string) error {
	key := s.key(runRefKey("", runID, bundleID))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(nil),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr interface{ ErrorCode() string }
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return nil // idempotent no-op
			}
		}
		return fmt.Errorf("artifacts: s3 link failed: %w", err)
	}
	return nil
}

func (s *S3Store) ListBundlesForRun(ctx context.Context, runID string) ([]string, error) {
	prefix := s.key(joinKey("runs", runID)) + "/"
	var ids []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("artifacts: s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			name := (*obj.Key)[len(prefix):]
			if len(name) > 4 && name[len(name)-4:] == ".ref" {
				ids = append(ids, name[:len(name)-4])
			}
		}
	}
	return ids, nil
}

func (s *S3Store) ListBundles(ctx context.Context, prefix string, limit int) ([]Meta, error) {
	base := s.key("bundles") + "/"
	var metas []Meta
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(base + prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("artifacts: s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			name := (*obj.Key)[len(base):]
			if len(name) <= 7 || name[len(name)-7:] != ".tar.gz" {
				continue
			}
			id := name[:len(name)-7]
			size := int64(0)
			if obj.Size != nil {
				size = *obj.Size
			}
			metas = append(metas, Meta{BundleID: id, Size: size})
			if limit > 0 && len(metas) >= limit {
				return metas, nil
			}
		}
	}
	return metas, nil
}
