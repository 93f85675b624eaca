package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Provider is the S3-compatible backend holding freelance media
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
	// ProviderGCS talks to Cloud Storage through its XML interoperability API with HMAC keys
	ProviderGCS Provider = "gcs"
)

var ErrNotConfigured = errors.New("storage: bucket not configured")

type Config struct {
	Provider        Provider
	Endpoint        string // overrides the provider default, host or full URL
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // base URL used to build object links; defaults to the bucket URL
}

// endpoint returns the base endpoint for providers that are not AWS
func (c Config) endpoint() string {
	if c.Endpoint != "" {
		if strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://") {
			return strings.TrimRight(c.Endpoint, "/")
		}
		return "https://" + strings.TrimRight(c.Endpoint, "/")
	}
	switch c.Provider {
	case ProviderWasabi:
		return fmt.Sprintf("https://s3.%s.wasabisys.com", c.Region)
	case ProviderGCS:
		return "https://storage.googleapis.com"
	default:
		return ""
	}
}

// ObjectURL returns the public link of key
func (c Config) ObjectURL(key string) string {
	if c.PublicURL != "" {
		return c.PublicURL + "/" + key
	}
	if ep := c.endpoint(); ep != "" {
		return fmt.Sprintf("%s/%s/%s", ep, c.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.Bucket, c.Region, key)
}

// S3Storage uploads objects to an S3-compatible bucket
type S3Storage struct {
	client *s3.Client
	cfg    Config
}

func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if ep := cfg.endpoint(); ep != "" {
			// Wasabi and GCS interop only accept path-style addressing
			o.BaseEndpoint = aws.String(ep)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{client: client, cfg: cfg}, nil
}

// Put uploads body under key and returns its public URL
func (s *S3Storage) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.cfg.ObjectURL(key), nil
}

// Ping checks that the bucket is reachable with the configured credentials
func (s *S3Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}
