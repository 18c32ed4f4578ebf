package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/bft-labs/snapsync/internal/ports"
)

// S3Store implements ObjectStore over an S3 bucket, or any S3-compatible
// endpoint passed via the ?endpoint= query argument of the store URL.
//
// S3 object PUTs are atomic, so Replace is realized as CopyObject onto the
// canonical key followed by a best-effort delete of the temp key.
type S3Store struct {
	client   s3iface.S3API
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Store creates a store over s3://bucket/prefix. Recognized query
// arguments: profile, region, endpoint.
func NewS3Store(bucket, prefix string, query url.Values) (*S3Store, error) {
	awsConfig := aws.NewConfig()
	if region := query.Get("region"); region != "" {
		awsConfig.WithRegion(region)
	}
	if endpoint := query.Get("endpoint"); endpoint != "" {
		awsConfig.WithEndpoint(endpoint)
		// Bucket-named virtual hosts are not compatible with explicit endpoints.
		awsConfig.WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Profile: query.Get("profile"),
		Config:  *awsConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}

	client := s3.New(sess)
	return NewS3StoreWithClient(client, bucket, prefix), nil
}

// NewS3StoreWithClient creates a store over an existing client.
func NewS3StoreWithClient(client s3iface.S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (s *S3Store) key(name string) string {
	return join(s.prefix, name)
}

// Get returns a reader for the named object.
func (s *S3Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ports.ErrNotExist
		}
		return nil, err
	}
	return out.Body, nil
}

// Put writes the object via the upload manager, which accepts a streaming reader.
func (s *S3Store) Put(ctx context.Context, name string, r io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", name, err)
	}
	return nil
}

// List returns names under prefix relative to the store root, sorted.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(join(s.prefix, prefix)),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			name := aws.StringValue(obj.Key)
			if strings.HasSuffix(name, "/") {
				continue
			}
			if s.prefix != "" {
				name = strings.TrimPrefix(strings.TrimPrefix(name, s.prefix), "/")
			}
			names = append(names, name)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("s3 list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Replace copies tempName onto name server-side, then deletes tempName.
func (s *S3Store) Replace(ctx context.Context, tempName, name string) error {
	_, err := s.client.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.key(name)),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + s.key(tempName))),
	})
	if err != nil {
		return fmt.Errorf("s3 replace %s: %w", name, err)
	}
	// Canonical object is in place; the temp delete is best-effort.
	_, _ = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(tempName)),
	})
	return nil
}

// Remove deletes the named object. S3 DeleteObject succeeds on absent keys.
func (s *S3Store) Remove(ctx context.Context, name string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

var _ ports.ObjectStore = (*S3Store)(nil)
