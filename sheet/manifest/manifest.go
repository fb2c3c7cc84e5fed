package manifest

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/cam-per/smbxsheet/sheet/layout"
)

const (
	Ext = ".cfg"
	sep = "|"
)

var (
	ErrEmpty    = errors.New("manifest: no entries")
	ErrBadName  = errors.New("manifest: name contains a separator or line break")
	ErrOutOfBox = errors.New("manifest: entry outside of the layout area")

	ErrUnencodable = errors.New("manifest: name cannot be written in the chosen encoding")
)

type Entry struct {
	Name          string
	Width, Height int
	X, Y          int
	// Placed is false for legacy entries that carry no offsets.
	Placed bool
}

func (e Entry) Rect() image.Rectangle { return image.Rect(e.X, e.Y, e.X+e.Width, e.Y+e.Height) }

type Manifest struct {
	Entries       []Entry
	Width, Height int
	Space         int
	// Columns is 0 for a strip layout.
	Columns       int
	PaletteHeight int
}

// FromSheet records a packed sheet.
func FromSheet(sheet *layout.Sheet, paletteHeight int) *Manifest {
	m := &Manifest{
		Width:         sheet.Width,
		Height:        sheet.Height,
		Space:         sheet.Space,
		PaletteHeight: paletteHeight,
		Entries:       make([]Entry, len(sheet.Placements)),
	}
	if sheet.Mode == layout.Grid {
		m.Columns = sheet.Grid.Columns
	}
	for i, p := range sheet.Placements {
		m.Entries[i] = Entry{Name: p.Name, Width: p.Width, Height: p.Height, X: p.X, Y: p.Y, Placed: true}
	}
	return m
}

func (m *Manifest) Mode() layout.Mode {
	if m.Columns > 0 {
		return layout.Grid
	}
	return layout.Strip
}

func (m *Manifest) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// Placements returns one placement per entry. Entries without offsets are
// laid out again the way the sheet was packed.
func (m *Manifest) Placements() ([]layout.Placement, error) {
	if len(m.Entries) == 0 {
		return nil, ErrEmpty
	}

	placed := true
	items := make([]layout.Item, len(m.Entries))
	cellW, cellH := 0, 0
	for i, e := range m.Entries {
		placed = placed && e.Placed
		items[i] = layout.Item{Name: e.Name, Width: e.Width, Height: e.Height}
		cellW = max(cellW, e.Width)
		cellH = max(cellH, e.Height)
	}

	if placed {
		out := make([]layout.Placement, len(m.Entries))
		for i, e := range m.Entries {
			out[i] = layout.Placement{Item: items[i], X: e.X, Y: e.Y}
		}
		return out, nil
	}

	var (
		sheet *layout.Sheet
		err   error
	)
	switch m.Mode() {
	case layout.Grid:
		sheet, err = layout.PackGrid(items, layout.GridSpec{Columns: m.Columns, CellWidth: cellW, CellHeight: cellH}, m.Space)
	default:
		sheet, err = layout.PackStrip(items, m.Space)
		if err == nil && m.Height > sheet.Height {
			// the recorded area is authoritative for centering
			for i := range sheet.Placements {
				sheet.Placements[i].Y = (m.Height - sheet.Placements[i].Height) / 2
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return sheet.Placements, nil
}

func (m *Manifest) Validate() error {
	if len(m.Entries) == 0 {
		return ErrEmpty
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("manifest: invalid area %dx%d", m.Width, m.Height)
	}
	if m.Space < 0 || m.Columns < 0 || m.PaletteHeight < 0 {
		return fmt.Errorf("manifest: negative space, columns or palette height")
	}
	for _, e := range m.Entries {
		if err := ValidName(e.Name); err != nil {
			return err
		}
		if e.Width <= 0 || e.Height <= 0 {
			return fmt.Errorf("manifest: %s has invalid size %dx%d", e.Name, e.Width, e.Height)
		}
	}

	placements, err := m.Placements()
	if err != nil {
		return err
	}
	bounds := m.Bounds()
	for _, p := range placements {
		if !p.Rect().In(bounds) {
			return fmt.Errorf("%w: %s at %v, area %v", ErrOutOfBox, p.Name, p.Rect(), bounds)
		}
	}
	return nil
}

func (m *Manifest) fits() bool {
	placements, err := m.Placements()
	if err != nil {
		return false
	}
	bounds := m.Bounds()
	for _, p := range placements {
		if !p.Rect().In(bounds) {
			return false
		}
	}
	return true
}

// ValidName rejects names that cannot be stored in a manifest line.
func ValidName(name string) error {
	if name == "" || strings.ContainsAny(name, sep+"\r\n") {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}
