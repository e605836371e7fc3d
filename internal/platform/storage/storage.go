// Package storage stores uploaded files in Supabase Storage through its
// S3-compatible endpoint and issues public object URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const publicPrefix = "/storage/v1/object/public/"

// ErrNotPublicURL is returned when a URL does not point at a public object of the bucket.
var ErrNotPublicURL = errors.New("storage: not a public object url")

// Config holds the S3 endpoint and the project URL used for public links.
type Config struct {
	ProjectURL string
	Endpoint   string
	Region     string
	KeyID      string
	Secret     string
}

// objectAPI is the subset of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store uploads and removes objects.
type Store struct {
	client     objectAPI
	projectURL string
}

// New builds a Store backed by the S3-compatible endpoint.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("storage: s3 endpoint is required")
	}
	if cfg.ProjectURL == "" {
		return nil, errors.New("storage: project url is required")
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.KeyID, cfg.Secret, ""),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	})
	return newStore(client, cfg.ProjectURL), nil
}

func newStore(client objectAPI, projectURL string) *Store {
	return &Store{client: client, projectURL: strings.TrimRight(projectURL, "/")}
}

// Object describes an upload.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload stores the object and returns its public URL.
func (s *Store) Upload(ctx context.Context, obj Object) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(obj.Bucket),
		Key:         aws.String(obj.Key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("storage: put %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	return s.PublicURL(obj.Bucket, obj.Key), nil
}

// Remove deletes an object.
func (s *Store) Remove(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL returns the public link for an object.
func (s *Store) PublicURL(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.projectURL + publicPrefix + bucket + "/" + strings.Join(segments, "/")
}

// KeyFromURL recovers the object key from a public URL of the bucket.
func KeyFromURL(publicURL, bucket string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("storage: parse url: %w", err)
	}
	marker := publicPrefix + bucket + "/"
	_, key, ok := strings.Cut(u.Path, marker)
	if !ok || key == "" {
		return "", ErrNotPublicURL
	}
	return key, nil
}
