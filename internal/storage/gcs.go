package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore keeps attachments in a Google Cloud Storage bucket under
// contactus/<derivative>/<filename>.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore connects to the bucket, with application default
// credentials unless a credentials file is given.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: init gcs: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) object(d Derivative, filename string) *gcs.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(Prefix + "/" + string(d) + "/" + filename)
}

func (s *GCSStore) Put(ctx context.Context, filename string, r io.Reader) error {
	w := s.object(Original, filename).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: gcs write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: gcs close: %w", err)
	}
	return nil
}

func (s *GCSStore) Open(ctx context.Context, d Derivative, filename string) (io.ReadCloser, error) {
	r, err := s.object(d, filename).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs open: %w", err)
	}
	return r, nil
}

func (s *GCSStore) Delete(ctx context.Context, filename string) error {
	for _, d := range derivatives {
		err := s.object(d, filename).Delete(ctx)
		if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("storage: gcs delete: %w", err)
		}
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
