package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/cam-per/smbxsheet/sheet/layout"
	"github.com/cam-per/smbxsheet/sheet/manifest"
)

var (
	ErrPercent   = errors.New("compose: resize percent must be positive")
	ErrTooSmall  = errors.New("compose: image too small to resize")
	ErrMismatch  = errors.New("compose: images and placements differ in count")
	ErrOutOfArea = errors.New("compose: crop outside of the composite")
)

// Background is the fill of a joined sheet outside of its images.
var Background = color.NRGBA{R: 255, G: 120, B: 255, A: 255}

type Piece struct {
	Name string
	image.Image
}

func ParseFilter(name string) (draw.Interpolator, error) {
	switch strings.ToLower(name) {
	case "", "nearest":
		return draw.NearestNeighbor, nil
	case "approx-bilinear":
		return draw.ApproxBiLinear, nil
	case "bilinear":
		return draw.BiLinear, nil
	case "catmull-rom", "catmullrom":
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("compose: unknown filter %q", name)
}

// ScaledSize applies percent to a width and height.
func ScaledSize(w, h, percent int) (int, int) {
	return w * percent / 100, h * percent / 100
}

// Scale resizes img by percent. At 100 the image is returned as is.
func Scale(img image.Image, percent int, interp draw.Interpolator) (image.Image, error) {
	if percent <= 0 {
		return nil, ErrPercent
	}
	if percent == 100 {
		return img, nil
	}
	if interp == nil {
		interp = draw.NearestNeighbor
	}
	bounds := img.Bounds()
	w, h := ScaledSize(bounds.Dx(), bounds.Dy(), percent)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d at %d%%", ErrTooSmall, bounds.Dx(), bounds.Dy(), percent)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst, nil
}

// Join draws images at their placements on a canvas filled with bg. Each
// placement rectangle is overwritten, so transparent source pixels stay
// transparent on the sheet.
func Join(sheet *layout.Sheet, images []image.Image, bg color.Color) (*image.NRGBA, error) {
	if len(images) != len(sheet.Placements) {
		return nil, fmt.Errorf("%w: %d images, %d placements", ErrMismatch, len(images), len(sheet.Placements))
	}
	canvas := image.NewNRGBA(sheet.Bounds())
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	for i, p := range sheet.Placements {
		src := images[i]
		draw.Draw(canvas, p.Rect(), src, src.Bounds().Min, draw.Src)
	}
	return canvas, nil
}

// AppendPalette returns a copy of img with strip pasted below it. The area
// not covered by either is transparent.
func AppendPalette(img image.Image, strip image.Image) *image.NRGBA {
	ib, sb := img.Bounds(), strip.Bounds()
	w := max(ib.Dx(), sb.Dx())
	canvas := image.NewNRGBA(image.Rect(0, 0, w, ib.Dy()+sb.Dy()))
	draw.Draw(canvas, image.Rect(0, 0, ib.Dx(), ib.Dy()), img, ib.Min, draw.Src)
	draw.Draw(canvas, image.Rect(0, ib.Dy(), sb.Dx(), ib.Dy()+sb.Dy()), strip, sb.Min, draw.Src)
	return canvas
}

// Separate crops every manifest entry out of composite and resizes the
// pieces by percent.
func Separate(composite image.Image, m *manifest.Manifest, percent int, interp draw.Interpolator) ([]Piece, error) {
	placements, err := m.Placements()
	if err != nil {
		return nil, err
	}
	bounds := composite.Bounds()
	area := image.Rect(0, 0, m.Width, m.Height).Add(bounds.Min)

	pieces := make([]Piece, 0, len(placements))
	for _, p := range placements {
		rect := p.Rect().Add(bounds.Min)
		if !rect.In(area) || !rect.In(bounds) {
			return nil, fmt.Errorf("%w: %s at %v, composite %v", ErrOutOfArea, p.Name, p.Rect(), bounds)
		}
		img, err := Scale(imaging.Crop(composite, rect), percent, interp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		pieces = append(pieces, Piece{Name: p.Name, Image: img})
	}
	return pieces, nil
}

// Slice cuts a spritesheet without manifest into cells named prefix1.png,
// prefix2.png, ...
func Slice(composite image.Image, cellWidth, cellHeight, space int, prefix string, percent int, interp draw.Interpolator) ([]Piece, error) {
	rects, err := layout.Slice(composite.Bounds(), cellWidth, cellHeight, space)
	if err != nil {
		return nil, err
	}
	pieces := make([]Piece, 0, len(rects))
	for i, rect := range rects {
		name := prefix + strconv.Itoa(i+1) + ".png"
		img, err := Scale(imaging.Crop(composite, rect), percent, interp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		pieces = append(pieces, Piece{Name: name, Image: img})
	}
	return pieces, nil
}
