// Package archive keeps a copy of every vault blob that a push replaces.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/vaultsync/internal/server/config"
	"github.com/google/uuid"
)

// Archiver stores a replaced ciphertext blob.
type Archiver interface {
	Archive(ctx context.Context, username, data string) error
}

// Noop discards everything.
type Noop struct{}

func (Noop) Archive(context.Context, string, string) error { return nil }

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
)

// S3Archiver writes blobs to an S3-compatible bucket under
// vaults/<username>/<yyyy>/<mm>/<dd>/<uuid>.json.
type S3Archiver struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// New returns Noop when the endpoint is empty, otherwise an S3Archiver.
func New(ctx context.Context, cfg *sc.Config) (Archiver, error) {
	if cfg.S3BaseEndpoint == "" {
		return Noop{}, nil
	}
	return NewS3Archiver(ctx, cfg)
}

func NewS3Archiver(ctx context.Context, cfg *sc.Config) (*S3Archiver, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Archiver{client: client, bucket: cfg.S3Bucket, now: time.Now}, nil
}

func (a *S3Archiver) key(username string) string {
	d := a.now().UTC()
	return fmt.Sprintf("vaults/%s/%04d/%02d/%02d/%s.json", username, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *S3Archiver) Archive(ctx context.Context, username, data string) error {
	if data == "" {
		return nil
	}
	key := a.key(username)
	err := putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}
