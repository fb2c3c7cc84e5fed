package imageio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cam-per/smbxsheet/sheet/manifest"
)

// Same as an output directory saves next to the input.
const Same = "same"

var (
	ErrNoOutputDir = errors.New("output directory not found")
	ErrNoInputDir  = errors.New("no input directory found")
	ErrBadPattern  = errors.New("input name is not a valid regular expression")
)

// CheckDirs drops missing input directories and fails when none is left or
// when the output directory does not exist.
func CheckDirs(inputs []string, output string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if output != Same && !isDir(output) {
		return nil, fmt.Errorf("%w: %s, please make sure it exists first", ErrNoOutputDir, output)
	}

	var found []string
	for _, dir := range inputs {
		if !isDir(dir) {
			logger.Warn("input directory not found, skipping", zap.String("dir", dir))
			continue
		}
		found = append(found, dir)
	}
	if len(found) == 0 {
		return nil, ErrNoInputDir
	}
	return found, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

type FindOptions struct {
	GIFs      bool
	Recursive bool
	// Match is matched against the start of the file name.
	Match string
	// RequireManifest skips images without a sibling manifest.
	RequireManifest bool
}

// Find lists the images of every directory in name order, directories
// before their subdirectories.
func Find(dirs []string, opts FindOptions, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var match *regexp.Regexp
	if opts.Match != "" {
		var err error
		if match, err = regexp.Compile(`^(?:` + opts.Match + `)`); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
		}
	}

	var found []string
	for _, dir := range dirs {
		files, err := find(dir, opts, match, logger)
		if err != nil {
			return nil, err
		}
		found = append(found, files...)
	}
	return found, nil
}

func find(dir string, opts FindOptions, match *regexp.Regexp, logger *zap.Logger) ([]string, error) {
	abs, _ := filepath.Abs(dir)
	logger.Info("searching for images", zap.String("dir", abs))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })

	var files, subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if !IsImage(name, opts.GIFs) {
			continue
		}
		if err := check(path, opts, match); err != nil {
			logger.Warn("skipping image", zap.String("file", name), zap.String("reason", err.Error()))
			continue
		}
		logger.Debug("found image", zap.String("file", name))
		files = append(files, path)
	}

	if opts.Recursive {
		for _, sub := range subdirs {
			more, err := find(sub, opts, match, logger)
			if err != nil {
				return nil, err
			}
			files = append(files, more...)
		}
	}
	return files, nil
}

func IsImage(name string, gifs bool) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return true
	case ".gif":
		return gifs
	}
	return false
}

// IsMask reports whether name is the mask half of an SMBX gif pair.
func IsMask(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), "m.gif")
}

func check(path string, opts FindOptions, match *regexp.Regexp) error {
	name := filepath.Base(path)
	if IsMask(name) {
		return errors.New("gif mask image")
	}
	if match != nil && !match.MatchString(name) {
		return errors.New("name does not match the input name")
	}
	if opts.RequireManifest {
		if _, err := os.Stat(manifest.PathFor(path)); err != nil {
			return errors.New(manifest.Ext + " file not found")
		}
	}
	return nil
}
