package batch

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/cam-per/smbxsheet/internal/compose"
	"github.com/cam-per/smbxsheet/internal/config"
	"github.com/cam-per/smbxsheet/internal/imageio"
	"github.com/cam-per/smbxsheet/sheet/layout"
	"github.com/cam-per/smbxsheet/sheet/manifest"
)

// Join lays the input images out on one sheet, appends their palettes and
// writes the manifest next to it.
func (runner *Runner) Join(ctx context.Context) (*Report, error) {
	report := &Report{Action: config.ActionJoin}
	if runner.layout == layout.Grid {
		if err := runner.cfg.CheckGrid(); err != nil {
			return nil, err
		}
	}
	if runner.cfg.OutputDir == imageio.Same && len(runner.cfg.InputDirs) != 1 {
		return nil, ErrSameMultiInput
	}

	files, err := runner.load(ctx, report)
	if err != nil {
		return nil, err
	}

	var (
		items  []layout.Item
		images []image.Image
	)
	for _, f := range files {
		bounds := f.Bounds()
		item := layout.Item{Name: f.Name(), Width: bounds.Dx(), Height: bounds.Dy()}
		if err := runner.checkName(item.Name); err != nil {
			runner.logger.Warn("skipping image", zap.String("file", item.Name), zap.Error(err))
			report.Skipped++
			continue
		}
		if runner.layout == layout.Grid && (item.Width > runner.cfg.ImageWidth || item.Height > runner.cfg.ImageHeight) {
			runner.logger.Warn("skipping image larger than a spritesheet cell",
				zap.String("file", item.Name),
				zap.Int("width", item.Width), zap.Int("height", item.Height))
			report.Skipped++
			continue
		}
		items = append(items, item)
		images = append(images, f.Image)
	}
	if len(items) == 0 {
		return nil, ErrNoneRemaining
	}

	var sheet *layout.Sheet
	if runner.layout == layout.Grid {
		sheet, err = layout.PackGrid(items, layout.GridSpec{
			Columns:    runner.cfg.Columns,
			Rows:       runner.cfg.Rows,
			CellWidth:  runner.cfg.ImageWidth,
			CellHeight: runner.cfg.ImageHeight,
		}, runner.cfg.Space)
	} else {
		sheet, err = layout.PackStrip(items, runner.cfg.Space)
	}
	if err != nil {
		return nil, err
	}
	if len(sheet.Dropped) > 0 {
		runner.logger.Warn("some images might not have been pasted, the spritesheet is full",
			zap.Int("dropped", len(sheet.Dropped)))
		report.Skipped += len(sheet.Dropped)
	}
	images = images[:len(sheet.Placements)]

	runner.logger.Info("creating new image",
		zap.Stringer("layout", sheet.Mode),
		zap.Int("width", sheet.Width),
		zap.Int("height", sheet.Height))
	for _, p := range sheet.Placements {
		runner.logger.Debug("pasting", zap.String("file", p.Name), zap.Int("x", p.X), zap.Int("y", p.Y))
	}
	canvas, err := compose.Join(sheet, images, runner.bg)
	if err != nil {
		return nil, err
	}

	dir := imageio.SaveDir(runner.cfg.OutputDir, files[0].Path)
	set := runner.palettes(images)
	var out image.Image = canvas
	paletteHeight := 0
	if runner.cfg.SeparatePalette {
		if err := runner.savePalette(set, dir, report); err != nil {
			return nil, err
		}
	} else if set.Len() > 0 {
		runner.logger.Info("pasting palette", zap.Int("rows", set.Len()))
		out = compose.AppendPalette(canvas, set.Image())
		paletteHeight = set.Len()
	}

	if err := runner.writeManifest(manifest.FromSheet(sheet, paletteHeight), dir, report); err != nil {
		return nil, err
	}
	runner.logger.Info("saving image", zap.String("name", runner.cfg.OutputName), zap.String("dir", dir))
	if err := runner.save(out, dir, runner.cfg.OutputName+".png", report); err != nil {
		return nil, err
	}
	return report, nil
}

// checkName rejects names the manifest cannot record.
func (runner *Runner) checkName(name string) error {
	if err := manifest.ValidName(name); err != nil {
		return err
	}
	return manifest.Encodable(name, runner.enc)
}

// writeManifest encodes m in memory first so a failed encode leaves no file.
func (runner *Runner) writeManifest(m *manifest.Manifest, dir string, report *Report) error {
	var buf bytes.Buffer
	if err := manifest.NewEncoder(&buf, runner.enc).Encode(m); err != nil {
		return err
	}
	path := filepath.Join(dir, runner.cfg.OutputName+manifest.Ext)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	runner.logger.Debug("manifest written",
		zap.String("file", path),
		zap.Int("entries", len(m.Entries)),
		zap.String("size", humanize.Bytes(uint64(buf.Len()))))
	report.Written = append(report.Written, path)
	return nil
}
