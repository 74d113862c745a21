// Package provider lists and fetches radar files from the public object
// stores that mirror the NEXRAD feeds and decodes them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/jddeal/go-wxdata/internal/observability"
	"github.com/jddeal/go-wxdata/stream"
)

// ErrNotFound is returned when a listing has nothing under the prefix.
var ErrNotFound = errors.New("provider: not found")

// ObjectStore is the part of a bucket the providers need.
type ObjectStore interface {
	// Source names the store in metrics, eg "s3".
	Source() string
	// List returns the base names of the objects directly under prefix and
	// of the "directories" below it.
	List(ctx context.Context, prefix string) (objects, dirs []string, err error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// S3Store reads a public S3 bucket anonymously.
type S3Store struct {
	client s3iface.S3API
	bucket string
}

// NewS3Store opens bucket in region without credentials.
func NewS3Store(region, bucket string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.AnonymousCredentials,
		Region:      aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &S3Store{client: s3.New(sess), bucket: bucket}, nil
}

func (s *S3Store) Source() string { return "s3" }

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, []string, error) {
	var objects, dirs []string
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	for {
		resp, err := s.client.ListObjectsV2WithContext(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range resp.CommonPrefixes {
			dirs = append(dirs, path.Base(aws.StringValue(d.Prefix)))
		}
		for _, o := range resp.Contents {
			objects = append(objects, path.Base(aws.StringValue(o.Key)))
		}
		if !aws.BoolValue(resp.IsTruncated) {
			return objects, dirs, nil
		}
		input.ContinuationToken = resp.NextContinuationToken
	}
}

func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GCSStore reads a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCSStore opens bucket. Without a credentials file the bucket is read
// unauthenticated, which works for the public NEXRAD buckets.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	opt := option.WithoutAuthentication()
	if credentialsFile != "" {
		opt = option.WithCredentialsFile(credentialsFile)
	}
	client, err := storage.NewClient(ctx, opt)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: client, bucket: client.Bucket(bucket)}, nil
}

func (s *GCSStore) Source() string { return "gcs" }

func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, []string, error) {
	var objects, dirs []string
	it := s.bucket.Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return objects, dirs, nil
		}
		if err != nil {
			return nil, nil, err
		}
		if attrs.Prefix != "" {
			dirs = append(dirs, path.Base(attrs.Prefix))
		} else {
			objects = append(objects, path.Base(attrs.Name))
		}
	}
}

func (s *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.bucket.Object(name).NewReader(ctx)
}

// Close releases the client.
func (s *GCSStore) Close() error { return s.client.Close() }

func list(ctx context.Context, store ObjectStore, m *observability.Metrics, prefix string) ([]string, []string, error) {
	objects, dirs, err := store.List(ctx, prefix)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ListingRequests.WithLabelValues(store.Source(), outcome).Inc()
	if err != nil {
		return nil, nil, fmt.Errorf("provider: list %s: %w", prefix, err)
	}
	return objects, dirs, nil
}

// fetch downloads name into memory.
func fetch(ctx context.Context, store ObjectStore, m *observability.Metrics, name string) (*stream.Buffer, error) {
	start := time.Now()
	body, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("provider: open %s: %w", name, err)
	}
	defer body.Close()

	data := stream.NewBuffer(0)
	n, err := data.ReadFrom(body)
	m.BytesFetched.WithLabelValues(store.Source()).Add(float64(n))
	if err != nil {
		return nil, fmt.Errorf("provider: read %s: %w", name, err)
	}
	m.FetchDuration.WithLabelValues(store.Source()).Observe(time.Since(start).Seconds())

	if err := data.UpdateReadPointers(data.Len()); err != nil {
		return nil, err
	}
	return data, nil
}
