// Package objectstore uploads profile pictures to an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

// Uploader stores an object and returns the URL it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL, when set, prefixes object keys in returned URLs (a CDN or
	// public bucket host).
	PublicURL string
}

type S3Uploader struct {
	cfg       Config
	putObject func(ctx context.Context, in *s3.PutObjectInput) error
}

// NewS3Uploader builds the S3 client. An empty bucket yields an uploader
// whose Upload always returns ErrDisabled.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	u := &S3Uploader{cfg: cfg}
	if cfg.Bucket == "" {
		return u, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	u.putObject = func(ctx context.Context, in *s3.PutObjectInput) error {
		_, err := client.PutObject(ctx, in)
		return err
	}
	return u, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if u.cfg.Bucket == "" || u.putObject == nil {
		return "", ErrDisabled
	}

	err := u.putObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s error: %w", key, err)
	}
	return u.ObjectURL(key), nil
}

// ObjectURL is where key is served from: PublicURL if set, else the
// path-style endpoint URL, else the AWS virtual-hosted URL.
func (u *S3Uploader) ObjectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()

	switch {
	case u.cfg.PublicURL != "":
		return strings.TrimRight(u.cfg.PublicURL, "/") + "/" + escaped
	case u.cfg.Endpoint != "":
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + path.Join(u.cfg.Bucket, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, escaped)
	}
}

// AvatarKey returns avatars/<user id>/<uuid><ext>, keeping the lower-cased
// extension of filename.
func AvatarKey(userID int, filename string) string {
	return fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
}
