package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/pkg/router"
)

// projectFlags override pagekit.json values.
type projectFlags struct {
	dir    string
	host   string
	port   int
	mode   string
	pageS3 string
}

func (f *projectFlags) register(fs *pflag.FlagSet, server bool) {
	fs.StringVarP(&f.dir, "dir", "C", ".", "Project directory")
	fs.StringVar(&f.mode, "mode", "", "Serving mode, ssr or spa (default from pagekit.json)")
	fs.StringVar(&f.pageS3, "pages-s3", "", "Load pages from s3://bucket/prefix instead of the pages directory")
	if server {
		fs.IntVarP(&f.port, "port", "p", 0, "Port to listen on (default from pagekit.json)")
		fs.StringVarP(&f.host, "host", "H", "", "Host to bind to (default from pagekit.json)")
	}
}

// load finds and reads pagekit.json, then applies the flag overrides.
func (f *projectFlags) load() (*config.Config, error) {
	root, err := config.FindProjectRoot(f.dir)
	if err != nil {
		return nil, err
	}
	pc, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	if f.host != "" {
		pc.Server.Host = f.host
	}
	if f.port != 0 {
		pc.Server.Port = f.port
	}
	if f.mode != "" {
		pc.Mode = f.mode
	}
	if f.pageS3 != "" {
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(f.pageS3, "s3://"), "/")
		pc.Pages.S3.Bucket = bucket
		pc.Pages.S3.Prefix = prefix
	}
	return pc, pc.Validate()
}

// appConfig converts pc for pagekit.New.
func appConfig(ctx context.Context, pc *config.Config) (pagekit.Config, error) {
	cfg, err := pagekit.FromProject(ctx, pc)
	if err != nil {
		return pagekit.Config{}, err
	}
	cfg.Logger = slog.Default()
	return cfg, nil
}

// buildTable discovers the pages of pc without starting a server.
func buildTable(ctx context.Context, pc *config.Config) (*router.RouteTable, error) {
	cfg, err := appConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return pagekit.BuildTable(ctx, cfg.Pages)
}
