package documents

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client used by S3Opener.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Opener reads documents addressed as s3://bucket/key.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	opener := documents.NewS3Opener(s3.NewFromConfig(cfg), 10<<20)
//	doc, err := documents.Load(ctx, rt, opener, "s3://notes/today.txt")
type S3Opener struct {
	client  S3API
	maxSize int64
}

// NewS3Opener creates an S3 opener. maxSize limits the object size in
// bytes; 0 means no limit.
func NewS3Opener(client S3API, maxSize int64) *S3Opener {
	return &S3Opener{client: client, maxSize: maxSize}
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(u string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(u, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %q", u)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url needs a bucket and a key: %q", u)
	}
	return bucket, key, nil
}

// Open downloads the object addressed by path.
func (o *S3Opener) Open(ctx context.Context, path string) ([]byte, error) {
	bucket, key, err := ParseS3URL(path)
	if err != nil {
		return nil, err
	}

	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", path, err)
	}
	defer out.Body.Close()

	if o.maxSize > 0 && aws.ToInt64(out.ContentLength) > o.maxSize {
		return nil, fmt.Errorf("s3 get %s: object is %d bytes, limit %d", path, aws.ToInt64(out.ContentLength), o.maxSize)
	}

	var r io.Reader = out.Body
	if o.maxSize > 0 {
		r = io.LimitReader(out.Body, o.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", path, err)
	}
	if o.maxSize > 0 && int64(len(data)) > o.maxSize {
		return nil, fmt.Errorf("s3 get %s: object exceeds %d bytes", path, o.maxSize)
	}
	return data, nil
}
