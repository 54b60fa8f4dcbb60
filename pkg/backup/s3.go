package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads archives to an S3 bucket using the default AWS credential
// chain.
type S3Store struct {
	uploader *manager.Uploader
	bucket   string
	log      *slog.Logger
}

// NewS3Store creates a blob store for the given bucket.
func NewS3Store(ctx context.Context, log *slog.Logger, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	return &S3Store{
		uploader: manager.NewUploader(s3.NewFromConfig(cfg)),
		bucket:   bucket,
		log:      log,
	}, nil
}

// Upload stores the file as an object keyed by its local path.
func (s *S3Store) Upload(ctx context.Context, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close() //nolint:errcheck // File open for read only.

	s.log.Debug("uploading to S3", "bucket", s.bucket, "key", filePath)

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filePath),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("uploading object %s: %w", filePath, err)
	}
	return nil
}
