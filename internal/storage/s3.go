package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gdgoc-itb/lms-service/internal/config"
)

// UploadedFile describes a stored object.
type UploadedFile struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	PublicID string   `json:"publicId"`
	Format   string   `json:"format"`
	Kind     FileKind `json:"kind"`
	Size     int64    `json:"size"`
}

// FileStore stores user uploads.
type FileStore interface {
	Upload(ctx context.Context, folder, filename string, content io.Reader, allowed ...FileKind) (*UploadedFile, error)
	Delete(ctx context.Context, publicID string) error
	// PublicIDFor maps a URL returned by Upload back to its public ID.
	PublicIDFor(url string) (string, bool)
}

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3FileStore keeps uploads in an S3 compatible bucket.
type S3FileStore struct {
	client        objectAPI
	bucket        string
	rootFolder    string
	publicBaseURL string
	maxBytes      int64
	logger        *slog.Logger
	now           func() time.Time
}

func NewS3FileStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*S3FileStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3FileStore(client, cfg, logger), nil
}

func newS3FileStore(client objectAPI, cfg config.StorageConfig, logger *slog.Logger) *S3FileStore {
	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3FileStore{
		client:        client,
		bucket:        cfg.Bucket,
		rootFolder:    strings.Trim(cfg.Folder, "/"),
		publicBaseURL: baseURL,
		maxBytes:      cfg.MaxUploadBytes,
		logger:        logger,
		now:           time.Now,
	}
}

// Upload validates the content against allowed kinds and stores it under
// <root>/<folder>/<unix millis>-<name>.
func (s *S3FileStore) Upload(ctx context.Context, folder, filename string, content io.Reader, allowed ...FileKind) (*UploadedFile, error) {
	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	kind, detected, err := Classify(data, allowed...)
	if err != nil {
		return nil, err
	}

	key := s.objectKey(folder, filename, detected.Extension())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(detected.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store object %s: %w", key, err)
	}

	s.logger.Info("File uploaded", "key", key, "kind", kind, "size", len(data))

	return &UploadedFile{
		Name:     path.Base(filename),
		URL:      s.publicBaseURL + "/" + key,
		PublicID: key,
		Format:   strings.TrimPrefix(detected.Extension(), "."),
		Kind:     kind,
		Size:     int64(len(data)),
	}, nil
}

func (s *S3FileStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", publicID, err)
	}
	s.logger.Info("File deleted", "key", publicID)
	return nil
}

func (s *S3FileStore) PublicIDFor(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (s *S3FileStore) objectKey(folder, filename, ext string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = unsafeKeyChars.ReplaceAllString(base, "-")
	if base == "" || base == "." {
		base = "file"
	}
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), base, ext)
	return path.Join(s.rootFolder, strings.Trim(folder, "/"), name)
}
