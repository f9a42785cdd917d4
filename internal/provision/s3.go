package provision

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures access to template objects. Empty credentials fall
// back to the default AWS credential chain.
type S3Config struct {
	Region          string
	Endpoint        string // optional, e.g. a MinIO URL
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string

	// HTTPClient replaces the SDK transport; tests use it.
	HTTPClient s3.HTTPClient
}

// S3 reads template objects.
type S3 struct {
	client *s3.Client
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "eu-central-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("provision: aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3{client: client}, nil
}

// Open streams the object bucket/key.
func (s *S3) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("provision: get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// ParseS3URL splits s3://bucket/key. ok is false for anything else,
// including URLs without a key.
func ParseS3URL(ref string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(ref, "s3://") {
		return "", "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return u.Host, key, true
}
