package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/cam-per/smbxsheet/internal/config"
	"github.com/cam-per/smbxsheet/internal/imageio"
	"github.com/cam-per/smbxsheet/sheet/manifest"
	"github.com/cam-per/smbxsheet/sheet/pal"
	"github.com/cam-per/smbxsheet/utils"
)

var ErrNoReplacement = errors.New("no color replacement given, use --replace #from=#to")

// Recolor swaps colors in every input image, in the order the replacements
// are given, and saves the result under the image's own name. A joined
// image keeps its manifest so it can still be separated.
func (runner *Runner) Recolor(ctx context.Context) (*Report, error) {
	report := &Report{Action: config.ActionRecolor}
	replacements, err := runner.cfg.Replacements()
	if err != nil {
		return nil, err
	}
	if len(replacements) == 0 {
		return nil, ErrNoReplacement
	}
	files, err := runner.load(ctx, report)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		img := imaging.Clone(f.Image)
		for _, r := range replacements {
			n := pal.ReplaceColor(img, r.From, r.To)
			runner.logger.Debug("replaced color",
				zap.String("file", f.Name()),
				zap.String("from", utils.HexColor(r.From)),
				zap.String("to", utils.HexColor(r.To)),
				zap.Int("pixels", n))
		}

		dir := imageio.SaveDir(runner.cfg.OutputDir, f.Path)
		name := imageio.UniqueName(dir, f.Name())
		if err := runner.save(img, dir, name, report); err != nil {
			return nil, err
		}
		if err := runner.copyManifest(f.Path, filepath.Join(dir, name), report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// copyManifest copies the manifest of src, if any, next to dst.
func (runner *Runner) copyManifest(src, dst string, report *Report) error {
	if runner.cfg.Resize != 100 {
		// offsets would no longer match the image
		return nil
	}
	data, err := os.ReadFile(manifest.PathFor(src))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	path := manifest.PathFor(dst)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	runner.logger.Debug("manifest copied", zap.String("file", path))
	report.Written = append(report.Written, path)
	return nil
}
