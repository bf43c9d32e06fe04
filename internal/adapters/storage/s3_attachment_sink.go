package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/pkg/config"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

// S3Sink implements the AttachmentSink interface over an S3-compatible
// backend (AWS S3 or MinIO). Single bucket; object keys are namespaced by the
// owning schedule id.
type S3Sink struct {
	client    *s3.Client
	bucket    string
	region    string
	keyPrefix string
	baseURL   *url.URL
}

// NewS3Sink creates an attachment sink from storage configuration
func NewS3Sink(ctx context.Context, cfg *config.StorageConfig) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	var base *url.URL
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil {
			base = u
		}
	}

	return &S3Sink{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		baseURL:   base,
	}, nil
}

// Store persists the content read from r and returns its public URL and
// metadata.
func (s *S3Sink) Store(ctx context.Context, ownerID, fileName, mimeType string, r io.Reader, size int64) (*providers.StoredObject, error) {
	key := s.objectKey(ownerID, fileName)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, apperrors.NewExternalError("failed to store attachment", err)
	}

	return &providers.StoredObject{
		URL:      s.objectURL(key),
		Size:     size,
		MimeType: mimeType,
		FileName: fileName,
	}, nil
}

func (s *S3Sink) objectKey(ownerID, fileName string) string {
	// A random prefix keeps same-named uploads from clobbering each other.
	name := uuid.New().String() + "-" + path.Base(fileName)
	if s.keyPrefix == "" {
		return path.Join(ownerID, name)
	}
	return path.Join(s.keyPrefix, ownerID, name)
}

func (s *S3Sink) objectURL(key string) string {
	if s.baseURL != nil {
		u := *s.baseURL
		u.Path = path.Join(u.Path, s.bucket, key)
		return u.String()
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
