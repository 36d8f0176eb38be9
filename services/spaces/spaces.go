package spaces

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sahilchouksey/attendance-api/config"
)

// Client archives generated reports to DigitalOcean Spaces (S3-compatible).
type Client struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// Config holds Spaces connection settings.
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// New creates a Spaces client.
func New(cfg Config) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
	}, nil
}

// NewFromEnv builds a client from the environment. Returns (nil, nil)
// when Spaces is not configured; report archiving is optional.
func NewFromEnv() (*Client, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}
	if getEnv.SPACES_ACCESS_KEY == "" || getEnv.SPACES_BUCKET == "" {
		return nil, nil
	}
	return New(Config{
		AccessKey: getEnv.SPACES_ACCESS_KEY,
		SecretKey: getEnv.SPACES_SECRET_KEY,
		Bucket:    getEnv.SPACES_BUCKET,
		Region:    getEnv.SPACES_REGION,
		Endpoint:  getEnv.SPACES_ENDPOINT,
	})
}

// ArchiveReport stores a generated report under reports/<kind>/<date>/.
// Returns the object URL.
func (c *Client) ArchiveReport(ctx context.Context, kind, filename string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("reports/%s/%s/%s", kind, time.Now().UTC().Format("2006-01-02"), filename)

	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(bytes.NewReader(data)),
		ACL:         aws.String("private"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return fmt.Sprintf("https://%s.%s/%s", c.bucket, c.endpoint, key), nil
}

// ListArchived lists archived report keys under a kind prefix.
func (c *Client) ListArchived(ctx context.Context, kind string) ([]string, error) {
	result, err := c.s3Client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(fmt.Sprintf("reports/%s/", kind)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archived reports: %w", err)
	}

	var keys []string
	for _, obj := range result.Contents {
		keys = append(keys, *obj.Key)
	}
	return keys, nil
}

// Delete removes an archived object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete archived report: %w", err)
	}
	return nil
}
