package batch

import (
	"context"
	"image"

	"github.com/cam-per/smbxsheet/internal/config"
	"github.com/cam-per/smbxsheet/internal/imageio"
)

// Resize saves every input image, resized, under its own name.
func (runner *Runner) Resize(ctx context.Context) (*Report, error) {
	report := &Report{Action: config.ActionResize}
	files, err := runner.load(ctx, report)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		dir := imageio.SaveDir(runner.cfg.OutputDir, f.Path)
		if err := runner.save(f.Image, dir, imageio.UniqueName(dir, f.Name()), report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// Palette saves only the palette strip of the input images.
func (runner *Runner) Palette(ctx context.Context) (*Report, error) {
	report := &Report{Action: config.ActionPalette}
	files, err := runner.load(ctx, report)
	if err != nil {
		return nil, err
	}
	images := make([]image.Image, len(files))
	for i, f := range files {
		images[i] = f.Image
	}
	set := runner.palettes(images)
	if err := runner.savePalette(set, imageio.SaveDir(runner.cfg.OutputDir, files[0].Path), report); err != nil {
		return nil, err
	}
	return report, nil
}
