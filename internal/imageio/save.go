package imageio

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/cam-per/smbxsheet/utils"
)

// UniqueName returns name, or "base (2).ext", "base (3).ext", ... if a file
// with that name already exists in dir.
func UniqueName(dir, name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 2; exists(filepath.Join(dir, candidate)); n++ {
		candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save encodes img into dir/name, the format following the extension, and
// returns the path and the number of bytes written.
func Save(img image.Image, dir, name string) (string, int64, error) {
	path := filepath.Join(dir, name)
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return "", 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	cw := &utils.CountingWriter{W: f}
	bw := bufio.NewWriter(cw)
	if err := imaging.Encode(bw, img, format); err != nil {
		return "", 0, fmt.Errorf("encode %s: %w", name, err)
	}
	if err := bw.Flush(); err != nil {
		return "", 0, err
	}
	return path, cw.N, f.Close()
}

// SaveDir resolves the output directory for an input file.
func SaveDir(output, inputPath string) string {
	if output == Same {
		return filepath.Dir(inputPath)
	}
	return output
}
