package pal

import (
	"image"
	"image/color"
	"image/draw"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cam-per/smbxsheet/utils"
)

type Palette []color.NRGBA

// Extract returns the distinct colors of img, skipping fully transparent
// pixels, in scan order.
func Extract(img image.Image) Palette {
	bounds := img.Bounds()
	seen := make(map[color.NRGBA]struct{})
	var pal Palette
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			pal = append(pal, c)
		}
	}
	return pal
}

// Sort orders the palette by hue, then lightness, then alpha.
func (pal Palette) Sort() {
	type keyed struct {
		c    color.NRGBA
		h, l float64
	}
	keys := make([]keyed, len(pal))
	for i, c := range pal {
		cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		h, _, l := cf.Hcl()
		keys[i] = keyed{c: c, h: h, l: l}
	}
	slices.SortStableFunc(keys, func(a, b keyed) int {
		switch {
		case a.h < b.h:
			return -1
		case a.h > b.h:
			return 1
		case a.l < b.l:
			return -1
		case a.l > b.l:
			return 1
		}
		return compare(a.c, b.c)
	})
	for i, k := range keys {
		pal[i] = k.c
	}
}

func compare(a, b color.NRGBA) int {
	x := uint32(a.A)<<24 | uint32(a.R)<<16 | uint32(a.G)<<8 | uint32(a.B)
	y := uint32(b.A)<<24 | uint32(b.R)<<16 | uint32(b.G)<<8 | uint32(b.B)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func (pal Palette) Contains(c color.NRGBA) bool { return slices.Contains(pal, c) }

// SubsetOf reports whether every color of pal is in other.
func (pal Palette) SubsetOf(other Palette) bool {
	set := make(map[color.NRGBA]struct{}, len(other))
	for _, c := range other {
		set[c] = struct{}{}
	}
	for _, c := range pal {
		if _, ok := set[c]; !ok {
			return false
		}
	}
	return true
}

func (pal Palette) key() string {
	sorted := slices.Clone(pal)
	slices.SortFunc(sorted, compare)
	var sb strings.Builder
	for _, c := range sorted {
		sb.WriteString(utils.HexColor(c))
	}
	return sb.String()
}

// Set keeps one row per distinct palette, in insertion order.
type Set struct {
	rows []Palette
	keys map[string]struct{}
}

func NewSet() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// Add reports whether pal was new. Empty palettes are ignored.
func (set *Set) Add(pal Palette) bool {
	if len(pal) == 0 {
		return false
	}
	k := pal.key()
	if _, ok := set.keys[k]; ok {
		return false
	}
	set.keys[k] = struct{}{}
	set.rows = append(set.rows, pal)
	return true
}

func (set *Set) Len() int        { return len(set.rows) }
func (set *Set) Rows() []Palette { return set.rows }

// Width is the length of the longest palette.
func (set *Set) Width() int {
	w := 0
	for _, row := range set.rows {
		w = max(w, len(row))
	}
	return w
}

// Collapse drops every palette contained in another one.
func (set *Set) Collapse() {
	var kept []Palette
	for i, row := range set.rows {
		contained := false
		for j, other := range set.rows {
			// rows are distinct, so a subset is always strictly shorter
			if i != j && len(other) > len(row) && row.SubsetOf(other) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, row)
		}
	}
	set.rows = kept
	set.keys = make(map[string]struct{}, len(kept))
	for _, row := range kept {
		set.keys[row.key()] = struct{}{}
	}
}

func (set *Set) Sort() {
	for _, row := range set.rows {
		row.Sort()
	}
}

// Union returns every distinct color of the set, row by row.
func (set *Set) Union() Palette {
	seen := make(map[color.NRGBA]struct{})
	var out Palette
	for _, row := range set.rows {
		for _, c := range row {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Image draws one palette per row; unused pixels stay transparent.
func (set *Set) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, set.Width(), set.Len()))
	for y, row := range set.rows {
		for x, c := range row {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// ReplaceColor recolors every pixel of img equal to from and returns the
// number of pixels changed.
func ReplaceColor(img draw.Image, from, to color.NRGBA) int {
	bounds := img.Bounds()
	n := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) == from {
				img.Set(x, y, to)
				n++
			}
		}
	}
	return n
}
