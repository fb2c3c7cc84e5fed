package layout

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	ErrEmpty         = errors.New("layout: no items")
	ErrNegativeSpace = errors.New("layout: negative space")
	ErrInvalidGrid   = errors.New("layout: invalid grid")
	ErrCellOverflow  = errors.New("layout: item larger than cell")
)

type Mode uint8

const (
	Strip Mode = iota
	Grid
)

func (mode Mode) String() string {
	switch mode {
	case Strip:
		return "images"
	case Grid:
		return "spritesheet"
	}
	return fmt.Sprintf("Mode(%d)", uint8(mode))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "images", "strip":
		return Strip, nil
	case "spritesheet", "grid", "sheet":
		return Grid, nil
	}
	return 0, fmt.Errorf("layout: unknown mode %q", s)
}

type Item struct {
	Name          string
	Width, Height int
}

type Placement struct {
	Item
	X, Y int
}

func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// GridSpec describes a spritesheet. Rows == 0 grows the sheet to fit every item.
type GridSpec struct {
	Columns, Rows         int
	CellWidth, CellHeight int
}

func (g GridSpec) Validate() error {
	if g.Columns <= 0 {
		return fmt.Errorf("%w: columns must be positive, got %d", ErrInvalidGrid, g.Columns)
	}
	if g.Rows < 0 {
		return fmt.Errorf("%w: rows must not be negative, got %d", ErrInvalidGrid, g.Rows)
	}
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return fmt.Errorf("%w: cell must be positive, got %dx%d", ErrInvalidGrid, g.CellWidth, g.CellHeight)
	}
	return nil
}

type Sheet struct {
	Mode          Mode
	Width, Height int
	Space         int
	Grid          GridSpec
	Placements    []Placement
	Dropped       []Item
}

func (sheet *Sheet) Bounds() image.Rectangle { return image.Rect(0, 0, sheet.Width, sheet.Height) }

// Extent is the length of count cells of the given length separated by space.
func Extent(count, length, space int) int {
	if count <= 0 {
		return 0
	}
	return count*length + space*(count-1)
}

func PackStrip(items []Item, space int) (*Sheet, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	if space < 0 {
		return nil, ErrNegativeSpace
	}

	sheet := &Sheet{Mode: Strip, Space: space}
	for _, item := range items {
		if item.Width <= 0 || item.Height <= 0 {
			return nil, fmt.Errorf("layout: %s has invalid size %dx%d", item.Name, item.Width, item.Height)
		}
		if item.Height > sheet.Height {
			sheet.Height = item.Height
		}
	}

	x := 0
	sheet.Placements = make([]Placement, len(items))
	for i, item := range items {
		sheet.Placements[i] = Placement{Item: item, X: x, Y: (sheet.Height - item.Height) / 2}
		x += item.Width + space
	}
	sheet.Width = x - space
	return sheet, nil
}

func PackGrid(items []Item, grid GridSpec, space int) (*Sheet, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	if space < 0 {
		return nil, ErrNegativeSpace
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	rows := grid.Rows
	if rows == 0 {
		rows = (len(items) + grid.Columns - 1) / grid.Columns
	}
	capacity := grid.Columns * rows

	sheet := &Sheet{
		Mode:   Grid,
		Space:  space,
		Grid:   GridSpec{Columns: grid.Columns, Rows: rows, CellWidth: grid.CellWidth, CellHeight: grid.CellHeight},
		Width:  Extent(grid.Columns, grid.CellWidth, space),
		Height: Extent(rows, grid.CellHeight, space),
	}
	for i, item := range items {
		if item.Width <= 0 || item.Height <= 0 {
			return nil, fmt.Errorf("layout: %s has invalid size %dx%d", item.Name, item.Width, item.Height)
		}
		if item.Width > grid.CellWidth || item.Height > grid.CellHeight {
			return nil, fmt.Errorf("%w: %s is %dx%d, cell is %dx%d",
				ErrCellOverflow, item.Name, item.Width, item.Height, grid.CellWidth, grid.CellHeight)
		}
		if i >= capacity {
			sheet.Dropped = append(sheet.Dropped, item)
			continue
		}
		col, row := i%grid.Columns, i/grid.Columns
		sheet.Placements = append(sheet.Placements, Placement{
			Item: item,
			X:    col * (grid.CellWidth + space),
			Y:    row * (grid.CellHeight + space),
		})
	}
	return sheet, nil
}

// Slice cuts bounds into cells row-major, stepping cell+space. Cells running
// past the right or bottom edge are clipped; cells left empty are omitted.
func Slice(bounds image.Rectangle, cellWidth, cellHeight, space int) ([]image.Rectangle, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell must be positive, got %dx%d", ErrInvalidGrid, cellWidth, cellHeight)
	}
	if space < 0 {
		return nil, ErrNegativeSpace
	}

	var rects []image.Rectangle
	for y := bounds.Min.Y; y < bounds.Max.Y; y += cellHeight + space {
		for x := bounds.Min.X; x < bounds.Max.X; x += cellWidth + space {
			r := image.Rect(x, y, x+cellWidth, y+cellHeight).Intersect(bounds)
			if r.Empty() {
				continue
			}
			rects = append(rects, r)
		}
	}
	return rects, nil
}
