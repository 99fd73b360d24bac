package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"

	"github.com/perf-fold/pkg/config"
	"github.com/perf-fold/pkg/errors"
)

// COSStore implements Store on Tencent Cloud COS.
type COSStore struct {
	client *cos.Client
	bucket string
	region string
	domain string
	scheme string
}

// NewCOSStore creates a COS-backed store from configuration.
func NewCOSStore(cfg *config.StorageConfig) (*COSStore, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.New(errors.CodeConfigError, "bucket and region are required for cos storage")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, errors.New(errors.CodeConfigError, "credentials are required for cos storage")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "myqcloud.com"
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}

	bucketURL, err := url.Parse(fmt.Sprintf("%s://%s.cos.%s.%s", scheme, cfg.Bucket, cfg.Region, domain))
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "failed to parse bucket URL", err)
	}
	serviceURL, err := url.Parse(fmt.Sprintf("%s://cos.%s.%s", scheme, cfg.Region, domain))
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "failed to parse service URL", err)
	}

	client := cos.NewClient(&cos.BaseURL{
		BucketURL:  bucketURL,
		ServiceURL: serviceURL,
	}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})

	return &COSStore{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		domain: domain,
		scheme: scheme,
	}, nil
}

// Put writes the data from reader under the given key.
func (s *COSStore) Put(ctx context.Context, key string, reader io.Reader) error {
	if _, err := s.client.Object.Put(ctx, key, reader, nil); err != nil {
		return errors.Wrap(errors.CodeUploadError, "failed to upload to cos", err)
	}
	return nil
}

// PutFile uploads a local file under the given key.
func (s *COSStore) PutFile(ctx context.Context, key string, localPath string) error {
	if _, err := s.client.Object.PutFromFile(ctx, key, localPath, nil); err != nil {
		return errors.Wrap(errors.CodeUploadError, "failed to upload file to cos", err)
	}
	return nil
}

// Fetch returns a reader for the object at the given key.
func (s *COSStore) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeIOError, "failed to download from cos", err)
	}
	return resp.Body, nil
}

// Exists reports whether an object exists at the given key.
func (s *COSStore) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.Object.IsExist(ctx, key)
	if err != nil {
		return false, errors.Wrap(errors.CodeIOError, "failed to check object existence", err)
	}
	return ok, nil
}

// URL returns the public URL of the key.
func (s *COSStore) URL(key string) string {
	return fmt.Sprintf("%s://%s.cos.%s.%s/%s", s.scheme, s.bucket, s.region, s.domain, key)
}
