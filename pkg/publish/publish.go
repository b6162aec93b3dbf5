// Package publish uploads a page tree to S3 so that a server can discover
// it with pages.NewS3Source.
//
// A file "pages/blog/[slug].html" of the local tree is stored under the key
// "<prefix>pages/blog/[slug].html", which S3Source reads back as the raw
// path "/pages/blog/[slug].html".
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	p := publish.New(s3.NewFromConfig(cfg), "my-site", "releases/v3/")
//	res, err := p.Publish(ctx, os.DirFS("."), "pages", publish.Options{Prune: true})
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by Publisher.
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options control a single Publish.
type Options struct {
	// Prune deletes objects below the tree's prefix that are not part of
	// the published tree.
	Prune bool

	// DryRun reports what would change without writing.
	DryRun bool
}

// Result lists the keys a Publish touched, sorted.
type Result struct {
	Uploaded []string
	Deleted  []string
}

// Publisher writes page trees to one bucket prefix.
type Publisher struct {
	client S3API
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

// New creates a Publisher for bucket below prefix.
func New(client S3API, bucket, prefix string, opts ...Option) *Publisher {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	p := &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the object key of the file name of the local tree.
func (p *Publisher) Key(name string) string {
	return p.prefix + name
}

// Publish uploads every file below root in fsys. Callers should build the
// route table from the same tree first; Publish does not validate pages.
func (p *Publisher) Publish(ctx context.Context, fsys fs.FS, root string, opts Options) (*Result, error) {
	root = path.Clean(root)
	res := &Result{}
	published := make(map[string]struct{})
	stamp := p.now().UTC().Format(time.RFC3339)

	err := fs.WalkDir(fsys, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		key := p.Key(name)
		published[key] = struct{}{}
		res.Uploaded = append(res.Uploaded, key)
		if opts.DryRun {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(name)),
			Metadata: map[string]string{
				"publish-time": stamp,
			},
		})
		if err != nil {
			return fmt.Errorf("uploading s3://%s/%s: %w", p.bucket, key, err)
		}
		p.logger.Debug("page uploaded", "key", key, "bytes", len(data))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Prune {
		stale, err := p.stale(ctx, p.Key(root)+"/", published)
		if err != nil {
			return nil, err
		}
		for _, key := range stale {
			if !opts.DryRun {
				_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
					Bucket: aws.String(p.bucket),
					Key:    aws.String(key),
				})
				if err != nil {
					return nil, fmt.Errorf("deleting s3://%s/%s: %w", p.bucket, key, err)
				}
				p.logger.Debug("page deleted", "key", key)
			}
			res.Deleted = append(res.Deleted, key)
		}
	}

	sort.Strings(res.Uploaded)
	sort.Strings(res.Deleted)
	p.logger.Info("pages published",
		"bucket", p.bucket,
		"prefix", p.prefix,
		"uploaded", len(res.Uploaded),
		"deleted", len(res.Deleted),
		"dry_run", opts.DryRun,
	)
	return res, nil
}

// stale lists keys below prefix that are not in keep.
func (p *Publisher) stale(ctx context.Context, prefix string, keep map[string]struct{}) ([]string, error) {
	var out []string
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", p.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if _, ok := keep[key]; !ok {
				out = append(out, key)
			}
		}
	}
	return out, nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".tsx", ".jsx", ".ts":
		return "text/plain; charset=utf-8"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
