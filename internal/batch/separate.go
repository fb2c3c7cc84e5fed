package batch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cam-per/smbxsheet/internal/compose"
	"github.com/cam-per/smbxsheet/internal/config"
	"github.com/cam-per/smbxsheet/internal/imageio"
	"github.com/cam-per/smbxsheet/sheet/layout"
	"github.com/cam-per/smbxsheet/sheet/manifest"
)

var errNoManifest = errors.New(manifest.Ext + " file not found")

// Separate crops joined images back into their pieces. Images without a
// manifest are sliced into cells when the spritesheet cell size is known.
func (runner *Runner) Separate(ctx context.Context) (*Report, error) {
	report := &Report{Action: config.ActionSeparate}

	canSlice := runner.layout == layout.Grid && runner.cfg.ImageWidth > 0 && runner.cfg.ImageHeight > 0
	paths, err := runner.find(!canSlice)
	if err != nil {
		return nil, err
	}
	files, err := imageio.Load(ctx, paths, runner.cfg.Workers, runner.logger)
	if err != nil {
		return nil, err
	}
	report.Skipped += len(paths) - len(files)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		runner.logger.Info("separating image", zap.String("file", f.Name()))

		pieces, err := runner.separate(f, canSlice)
		if err != nil {
			runner.logger.Warn("cannot separate image, skipping", zap.String("file", f.Name()), zap.Error(err))
			report.Skipped++
			continue
		}

		dir := imageio.SaveDir(runner.cfg.OutputDir, f.Path)
		for _, piece := range pieces {
			bounds := piece.Bounds()
			runner.logger.Debug("cropped image",
				zap.String("file", piece.Name),
				zap.Int("width", bounds.Dx()),
				zap.Int("height", bounds.Dy()))
			if err := runner.save(piece.Image, dir, imageio.UniqueName(dir, piece.Name), report); err != nil {
				return nil, err
			}
		}
	}
	return report, nil
}

func (runner *Runner) separate(f *imageio.File, canSlice bool) ([]compose.Piece, error) {
	m, err := runner.readManifest(manifest.PathFor(f.Path))
	switch {
	case err == nil:
		if err := m.Validate(); err != nil {
			return nil, err
		}
		runner.logger.Debug("manifest read",
			zap.Stringer("layout", m.Mode()),
			zap.Int("entries", len(m.Entries)),
			zap.Int("palette_rows", m.PaletteHeight))
		return compose.Separate(f.Image, m, runner.cfg.Resize, runner.interp)
	case errors.Is(err, errNoManifest) && canSlice:
		return compose.Slice(f.Image, runner.cfg.ImageWidth, runner.cfg.ImageHeight, runner.cfg.Space,
			runner.cfg.OutputName, runner.cfg.Resize, runner.interp)
	}
	return nil, err
}

func (runner *Runner) readManifest(path string) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errNoManifest
		}
		return nil, err
	}
	defer f.Close()

	m, err := manifest.NewDecoder(f, runner.enc).Decode()
	if err != nil {
		return nil, fmt.Errorf("cannot parse the cfg file correctly: %w", err)
	}
	return m, nil
}
