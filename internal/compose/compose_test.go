package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/cam-per/smbxsheet/sheet/layout"
	"github.com/cam-per/smbxsheet/sheet/manifest"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func at(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestScale(t *testing.T) {
	src := solid(4, 6, red)
	src.SetNRGBA(0, 0, blue)

	img, err := Scale(src, 200, nil)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 12), img.Bounds())
	require.Equal(t, blue, at(img, 1, 1))
	require.Equal(t, red, at(img, 2, 2))

	img, err = Scale(src, 50, draw.NearestNeighbor)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 2, 3), img.Bounds())

	same, err := Scale(src, 100, nil)
	require.NoError(t, err)
	require.Same(t, src, same)

	_, err = Scale(src, 10, nil)
	require.ErrorIs(t, err, ErrTooSmall)

	_, err = Scale(src, 0, nil)
	require.ErrorIs(t, err, ErrPercent)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	require.Equal(t, draw.NearestNeighbor, f)

	_, err = ParseFilter("lanczos")
	require.Error(t, err)
}

func TestJoin(t *testing.T) {
	a := solid(2, 4, red)
	b := image.NewNRGBA(image.Rect(0, 0, 2, 2)) // fully transparent

	sheet, err := layout.PackStrip([]layout.Item{
		{Name: "a", Width: 2, Height: 4},
		{Name: "b", Width: 2, Height: 2},
	}, 1)
	require.NoError(t, err)

	canvas, err := Join(sheet, []image.Image{a, b}, Background)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 5, 4), canvas.Bounds())
	require.Equal(t, red, canvas.NRGBAAt(1, 3))
	require.Equal(t, Background, canvas.NRGBAAt(2, 0))
	require.Equal(t, color.NRGBA{}, canvas.NRGBAAt(3, 1))
	require.Equal(t, Background, canvas.NRGBAAt(3, 0))

	_, err = Join(sheet, []image.Image{a}, Background)
	require.ErrorIs(t, err, ErrMismatch)
}

func TestAppendPalette(t *testing.T) {
	img := solid(3, 2, red)
	strip := solid(5, 1, blue)

	out := AppendPalette(img, strip)
	require.Equal(t, image.Rect(0, 0, 5, 3), out.Bounds())
	require.Equal(t, red, out.NRGBAAt(2, 1))
	require.Equal(t, color.NRGBA{}, out.NRGBAAt(4, 0))
	require.Equal(t, blue, out.NRGBAAt(4, 2))
}

func TestSeparate_RoundTrip(t *testing.T) {
	a := solid(2, 4, red)
	b := solid(3, 2, blue)
	sheet, err := layout.PackStrip([]layout.Item{
		{Name: "a.png", Width: 2, Height: 4},
		{Name: "b.png", Width: 3, Height: 2},
	}, 2)
	require.NoError(t, err)

	canvas, err := Join(sheet, []image.Image{a, b}, Background)
	require.NoError(t, err)
	composite := AppendPalette(canvas, solid(7, 1, blue))

	pieces, err := Separate(composite, manifest.FromSheet(sheet, 1), 100, nil)
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	require.Equal(t, "b.png", pieces[1].Name)
	require.Equal(t, a.Pix, pieces[0].Image.(*image.NRGBA).Pix)
	require.Equal(t, b.Pix, pieces[1].Image.(*image.NRGBA).Pix)

	pieces, err = Separate(composite, manifest.FromSheet(sheet, 1), 200, nil)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 6, 4), pieces[1].Bounds())
}

func TestSeparate_OutOfArea(t *testing.T) {
	m := &manifest.Manifest{
		Width: 10, Height: 10,
		Entries: []manifest.Entry{{Name: "a.png", Width: 4, Height: 4, X: 8, Y: 0, Placed: true}},
	}
	_, err := Separate(solid(10, 10, red), m, 100, nil)
	require.ErrorIs(t, err, ErrOutOfArea)
}

func TestSlice(t *testing.T) {
	sheet := solid(5, 2, red)
	sheet.SetNRGBA(3, 0, blue)

	pieces, err := Slice(sheet, 2, 2, 1, "image", 100, nil)
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	require.Equal(t, "image1.png", pieces[0].Name)
	require.Equal(t, "image2.png", pieces[1].Name)
	require.Equal(t, blue, at(pieces[1], 0, 0))
}
