package pages

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source is a Source over the objects below a bucket prefix. An object
// with key "<prefix>pages/index.html" has raw path "/pages/index.html".
// Objects are yielded in the same order as FSSource walks a directory tree.
type S3Source struct {
	client S3API
	bucket string
	prefix string
	parse  ParseFunc
}

// S3Option configures an S3Source.
type S3Option func(*S3Source)

// WithParser sets how fetched pages are parsed (default ParseTemplate).
func WithParser(p ParseFunc) S3Option {
	return func(s *S3Source) {
		s.parse = p
	}
}

// NewS3Source creates a Source listing bucket below prefix. Pages are parsed
// with ParseTemplate.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	src := pages.NewS3Source(s3.NewFromConfig(cfg), "my-site", "releases/v3/")
func NewS3Source(client S3API, bucket, prefix string, opts ...S3Option) *S3Source {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	s := &S3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
		parse:  ParseTemplate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Walk implements Source. The whole listing is read before fn is called;
// only matched pages are fetched.
func (s *S3Source) Walk(ctx context.Context, fn WalkFunc) error {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			if key := aws.ToString(obj.Key); !strings.HasSuffix(key, "/") {
				keys = append(keys, key)
			}
		}
	}

	slices.SortFunc(keys, compareTreeOrder)
	for _, key := range keys {
		rawPath := "/" + strings.TrimPrefix(key, s.prefix)
		if err := fn(rawPath, s.loader(key, rawPath)); err != nil {
			return err
		}
	}
	return nil
}

// compareTreeOrder orders slash-separated keys the way fs.WalkDir visits
// them: name by name within each directory, so "blog/x.html" comes before
// "blog-a.html" although '-' sorts before '/'.
func compareTreeOrder(a, b string) int {
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	for i := 0; i < min(len(as), len(bs)); i++ {
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func (s *S3Source) loader(key, rawPath string) LoadFunc {
	return func(ctx context.Context) (Component, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("fetching s3://%s/%s: %w", s.bucket, key, err)
		}
		defer out.Body.Close()

		data, err := io.ReadAll(out.Body)
		if err != nil {
			return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, key, err)
		}
		return s.parse(rawPath, data)
	}
}
