package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Options configures the publisher. Static keys are optional; without them
// the default AWS credential chain is used.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Publisher copies finished output files to S3.
type Publisher struct {
	up     uploader
	bucket string
	prefix string
}

// NewS3Publisher loads AWS config and returns a Publisher for opts.Bucket.
func NewS3Publisher(ctx context.Context, opts S3Options) (*Publisher, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket not set")
	}
	var loaders []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loaders = append(loaders, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loaders = append(loaders, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newPublisher(manager.NewUploader(s3.NewFromConfig(cfg)), opts.Bucket, opts.Prefix), nil
}

func newPublisher(up uploader, bucket, prefix string) *Publisher {
	return &Publisher{up: up, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a local output file.
func (p *Publisher) Key(localPath string) string {
	prefix := strings.TrimPrefix(p.prefix, "/")
	if prefix == "" {
		return filepath.Base(localPath)
	}
	return path.Join(prefix, filepath.Base(localPath))
}

// Publish uploads localPath and returns its s3:// URL.
func (p *Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := p.Key(localPath)
	if _, err := p.up.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/pdf"),
	}); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", localPath, err)
	}
	url := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	log.Info().Str("file", localPath).Str("url", url).Msg("published output to s3")
	return url, nil
}
