package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/publish"
)

type publishOptions struct {
	bucket string
	prefix string
	region string
	prune  bool
	dryRun bool
}

func publishCmd() *cobra.Command {
	var (
		flags projectFlags
		opts  publishOptions
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the pages directory to S3",
		Long: `Build the route table from the local pages directory and, when it is
valid, upload the directory to S3 where 'serve --pages-s3' and
pages.s3 in pagekit.json read it from.

Examples:
  pagekit publish                               # bucket from pages.s3
  pagekit publish --bucket my-site --prefix releases/v3
  pagekit publish --prune --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := flags.load()
			if err != nil {
				return err
			}
			client, err := s3Client(cmd.Context(), pc, &opts)
			if err != nil {
				return err
			}
			return runPublish(cmd.Context(), cmd.OutOrStdout(), pc, client, opts)
		},
	}

	flags.register(cmd.Flags(), false)
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "Bucket (default: pages.s3.bucket)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Key prefix (default: pages.s3.prefix)")
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region (default: pages.s3.region or the AWS environment)")
	cmd.Flags().BoolVar(&opts.prune, "prune", false, "Delete pages in the bucket that no longer exist locally")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print what would change without uploading")

	return cmd
}

func s3Client(ctx context.Context, pc *config.Config, opts *publishOptions) (*s3.Client, error) {
	if opts.region == "" {
		opts.region = pc.Pages.S3.Region
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Could not load AWS configuration").
			Wrap(err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func runPublish(ctx context.Context, w io.Writer, pc *config.Config, client publish.S3API, opts publishOptions) error {
	if opts.bucket == "" {
		opts.bucket = pc.Pages.S3.Bucket
	}
	if opts.prefix == "" {
		opts.prefix = pc.Pages.S3.Prefix
	}
	if opts.bucket == "" {
		return errors.New("E120").
			WithDetail("No bucket to publish to").
			WithSuggestion("Pass --bucket or set pages.s3.bucket in pagekit.json")
	}

	// Validate the local tree, never the one already in the bucket.
	local := *pc
	local.Pages.S3 = config.S3Config{}
	table, err := buildTable(ctx, &local)
	if err != nil {
		return err
	}

	pagesDir := local.PagesPath()
	p := publish.New(client, opts.bucket, opts.prefix)
	res, err := p.Publish(ctx, os.DirFS(filepath.Dir(pagesDir)), filepath.Base(pagesDir), publish.Options{
		Prune:  opts.prune,
		DryRun: opts.dryRun,
	})
	if err != nil {
		return err
	}

	verb := "Published"
	if opts.dryRun {
		verb = "Would publish"
	}
	success(w, "%s %d routes to s3://%s/%s", verb, len(table.Entries), opts.bucket, opts.prefix)
	for _, key := range res.Uploaded {
		info(w, "+ %s", key)
	}
	for _, key := range res.Deleted {
		info(w, "- %s", key)
	}
	return nil
}
