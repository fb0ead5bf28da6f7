// Package ossstore keeps uploaded files in an Alibaba Cloud OSS bucket.
package ossstore

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
)

// Bucket is the part of *oss.Bucket the store uses.
type Bucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
	DeleteObject(objectKey string, options ...oss.Option) error
}

type Store struct {
	bucket  Bucket
	baseURL string
}

var _ core.FileStore = (*Store)(nil) // interface compliance check

// New connects to the configured bucket. Objects are addressed virtual-host style
// (https://<bucket>.<endpoint>/<key>) unless a public base URL is configured.
func New(conf *core.Config) (*Store, error) {
	fc := conf.Files
	client, err := oss.New(fc.OSSEndpoint, fc.OSSAccessKeyID, fc.OSSAccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating oss client")
	}
	bucket, err := client.Bucket(fc.OSSBucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening oss bucket")
	}
	return NewWithBucket(bucket, publicBaseURL(fc)), nil
}

func NewWithBucket(bucket Bucket, baseURL string) *Store {
	return &Store{bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func publicBaseURL(fc core.FilesConfig) string {
	if fc.Backend == core.FilesOSS && fc.PublicBaseURL != "" && !strings.Contains(fc.PublicBaseURL, "localhost") {
		return fc.PublicBaseURL
	}
	host := strings.TrimPrefix(strings.TrimPrefix(fc.OSSEndpoint, "https://"), "http://")
	return "https://" + fc.OSSBucket + "." + strings.TrimRight(host, "/")
}

func (s *Store) Save(ctx context.Context, key, contentType string, r io.Reader, _ int64) (string, error) {
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return "", errors.Wrap(err, "putting object")
	}
	return s.baseURL + "/" + escapeKey(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrap(s.bucket.DeleteObject(key, oss.WithContext(ctx)), "deleting object")
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
