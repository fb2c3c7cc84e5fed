package imageio

import (
	"context"
	"image"
	"path/filepath"
	"runtime"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type File struct {
	Path string
	image.Image
}

func (f *File) Name() string { return filepath.Base(f.Path) }

// Load decodes paths with up to workers decoders. Files that fail to decode
// are logged and left out; the order of the rest is kept.
func Load(ctx context.Context, paths []string, workers int, logger *zap.Logger) ([]*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	decoded := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(path)
			if err != nil {
				logger.Warn("cannot decode image, skipping", zap.String("file", path), zap.Error(err))
				return nil
			}
			decoded[i] = &File{Path: path, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(decoded))
	for _, f := range decoded {
		if f != nil {
			files = append(files, f)
		}
	}
	return files, nil
}
