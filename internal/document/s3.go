package document

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"resumatch/internal/config"
	"resumatch/internal/errors"
)

const s3Scheme = "s3"

type s3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

const endpointOnlyRegion = "auto"

// S3Fetcher downloads documents from S3 or an S3-compatible store
type S3Fetcher struct {
	client s3GetObjectAPI
}

// NewS3Fetcher builds a client from the sources.s3 settings. Static
// credentials are used when both keys are set, otherwise the default AWS
// credential chain applies.
func NewS3Fetcher(ctx context.Context, cfg config.S3Config) (*S3Fetcher, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region := s3Region(cfg); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load S3 configuration", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Fetcher{client: client}, nil
}

// s3Region returns the configured region. S3-compatible stores reached through
// an endpoint get "auto" when none is set.
func s3Region(cfg config.S3Config) string {
	if cfg.Region == "" && cfg.Endpoint != "" {
		return endpointOnlyRegion
	}
	return cfg.Region
}

// Fetch downloads one object, refusing objects larger than maxSize bytes
func (f *S3Fetcher) Fetch(ctx context.Context, bucket, key string, maxSize int64) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeRemoteSourceFailed,
			fmt.Sprintf("failed to get s3://%s/%s", bucket, key), err)
	}
	defer func() { _ = out.Body.Close() }()

	source := fmt.Sprintf("s3://%s/%s", bucket, key)
	if out.ContentLength != nil {
		if err := checkSize(source, *out.ContentLength, maxSize); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(io.LimitReader(out.Body, maxSize+1))
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeRemoteSourceFailed,
			fmt.Sprintf("failed to read %s", source), err)
	}
	if err := checkSize(source, int64(len(data)), maxSize); err != nil {
		return nil, err
	}
	return data, nil
}

// IsS3URI reports whether source names an object as s3://bucket/key
func IsS3URI(source string) bool {
	return strings.HasPrefix(strings.ToLower(source), s3Scheme+"://")
}

// ParseS3URI splits s3://bucket/key into its bucket and key
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil || !strings.EqualFold(u.Scheme, s3Scheme) {
		return "", "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid S3 URI %q", uri), err)
	}

	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("S3 URI %q must have the form s3://bucket/key", uri), nil)
	}
	return bucket, key, nil
}
