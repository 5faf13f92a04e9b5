package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Config selects the bucket that archives generated documents
type S3Config struct {
	Bucket string
	Region string
	Prefix string
	// Endpoint points at an S3-compatible server; path-style addressing is used when set
	Endpoint string
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3FileStorage keeps generated documents as objects under one key prefix
type S3FileStorage struct {
	client objectAPI
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3FileStorage loads AWS credentials from the default chain
func NewS3FileStorage(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3FileStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3FileStorage(client, cfg, logger), nil
}

func newS3FileStorage(client objectAPI, cfg S3Config, logger *zap.Logger) *S3FileStorage {
	return &S3FileStorage{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}
}

func (s *S3FileStorage) Save(ctx context.Context, p string, content []byte) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	}
	if ct := contentType(key); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		s.logger.Error("Failed to upload object", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.logger.Debug("Object saved", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("size", len(content)))
	return nil
}

func (s *S3FileStorage) Read(ctx context.Context, p string) ([]byte, error) {
	key, err := s.key(p)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to fetch object", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to read from S3: %w", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return content, nil
}

func (s *S3FileStorage) Exists(ctx context.Context, p string) bool {
	key, err := s.key(p)
	if err != nil {
		return false
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// GetFullPath returns the s3:// URI of the object
func (s *S3FileStorage) GetFullPath(relativePath string) string {
	return "s3://" + s.bucket + "/" + path.Join(s.prefix, relativePath)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// contentType does not rely on the host mime tables for spreadsheets
func contentType(key string) string {
	ext := path.Ext(key)
	if ext == ".xlsx" {
		return xlsxContentType
	}
	return mime.TypeByExtension(ext)
}

// key rejects paths that climb above the prefix
func (s *S3FileStorage) key(p string) (string, error) {
	cleaned := path.Clean("/" + p)
	if p == "" || strings.Contains(p, "..") || cleaned == "/" {
		return "", fmt.Errorf("invalid object path: %q", p)
	}
	return strings.TrimPrefix(path.Join(s.prefix, cleaned), "/"), nil
}
