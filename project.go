package pagekit

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/assets"
	"github.com/pagekit-dev/pagekit/pkg/bridge"
	"github.com/pagekit-dev/pagekit/pkg/pages"
)

// LoadProject reads pagekit.json from dir or the nearest parent directory
// and returns the matching Config.
func LoadProject(ctx context.Context, dir string) (Config, error) {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return Config{}, err
	}
	pc, err := config.Load(root)
	if err != nil {
		return Config{}, err
	}
	return FromProject(ctx, pc)
}

// FromProject converts a loaded project configuration. Pages come from S3
// when pages.s3.bucket is set, otherwise from the pages directory. In SSR
// mode page templates can call {{asset "name"}}, resolved through the
// static manifest when there is one.
func FromProject(ctx context.Context, pc *config.Config) (Config, error) {
	if err := pc.Validate(); err != nil {
		return Config{}, err
	}

	var staticFS fs.FS
	if info, err := os.Stat(pc.StaticPath()); err == nil && info.IsDir() {
		staticFS = os.DirFS(pc.StaticPath())
	}

	src, err := pagesSource(ctx, pc, staticFS)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Pages: PagesConfig{
			Source:  src,
			Options: pc.PagesOptions(),
		},
		Mode: Mode(pc.Mode),
		Static: StaticConfig{
			FS:     staticFS,
			Prefix: pc.Static.Prefix,
			Index:  pc.Static.Index,
		},
		Bridge: BridgeConfig{
			Prefix:       pc.Bridge.Prefix,
			MaxBodyBytes: pc.Bridge.MaxBodyBytes,
			Registry:     bridge.NewRegistry(),
		},
		Metrics: MetricsConfig{
			Enabled: pc.Metrics.Enabled,
			Path:    pc.Metrics.Path,
		},
		Tracing:         pc.Tracing,
		Addr:            pc.Address(),
		ShutdownTimeout: pc.ShutdownDuration(),
	}, nil
}

func pagesSource(ctx context.Context, pc *config.Config, staticFS fs.FS) (pages.Source, error) {
	// SPA pages are client components; the server only needs their paths.
	parse := func(rawPath string, _ []byte) (pages.Component, error) {
		return pages.Ref{RawPath: rawPath}, nil
	}
	load := pages.RefLoader
	if pc.Mode != config.ModeSPA {
		resolver, err := assets.ForStatic(staticFS, pc.Static.Manifest, pc.Static.Prefix)
		if err != nil {
			return nil, errors.New("E120").
				WithPath(filepath.Join(pc.StaticPath(), pc.Static.Manifest)).
				WithDetail("Could not read the asset manifest").
				Wrap(err)
		}
		funcs := assets.FuncMap(resolver)
		parse = pages.TemplateParser(funcs)
		load = pages.TemplateLoaderFuncs(funcs)
	}

	if pc.UsesS3() {
		var opts []func(*awsconfig.LoadOptions) error
		if pc.Pages.S3.Region != "" {
			opts = append(opts, awsconfig.WithRegion(pc.Pages.S3.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, errors.New("E120").
				WithDetail("Could not load AWS configuration for pages.s3").
				Wrap(err)
		}
		client := s3.NewFromConfig(awsCfg)
		return pages.NewS3Source(client, pc.Pages.S3.Bucket, pc.Pages.S3.Prefix, pages.WithParser(parse)), nil
	}

	dir := pc.PagesPath()
	return pages.NewFSSource(os.DirFS(filepath.Dir(dir)), filepath.Base(dir), pages.WithLoader(load)), nil
}
