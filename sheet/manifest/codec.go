package manifest

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// PathFor returns the manifest path belonging to an image path.
func PathFor(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + Ext
}

// Encodable reports an error when name cannot be written in enc; nil means UTF-8.
func Encodable(name string, enc encoding.Encoding) error {
	if enc == nil {
		enc = unicode.UTF8
	}
	if _, err := enc.NewEncoder().String(name); err != nil {
		return fmt.Errorf("%w: %q", ErrUnencodable, name)
	}
	return nil
}

type Decoder struct {
	r io.Reader
}

// NewDecoder reads a manifest written in enc; nil means UTF-8.
func NewDecoder(r io.Reader, enc encoding.Encoding) *Decoder {
	if enc == nil {
		enc = unicode.UTF8
	}
	return &Decoder{r: transform.NewReader(r, enc.NewDecoder())}
}

func (decoder *Decoder) Decode() (*Manifest, error) {
	type line struct {
		no   int
		text string
	}
	var lines []line

	scanner := bufio.NewScanner(decoder.r)
	no := 0
	for scanner.Scan() {
		no++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, line{no: no, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) < 2 {
		return nil, ErrEmpty
	}

	m := &Manifest{}
	trailer := lines[len(lines)-1]
	fourFields, err := m.decodeTrailer(trailer.text)
	if err != nil {
		return nil, fmt.Errorf("manifest: line %d: %w", trailer.no, err)
	}

	m.Entries = make([]Entry, 0, len(lines)-1)
	for _, l := range lines[:len(lines)-1] {
		e, err := decodeEntry(l.text)
		if err != nil {
			return nil, fmt.Errorf("manifest: line %d: %w", l.no, err)
		}
		m.Entries = append(m.Entries, e)
	}
	if fourFields {
		m.resolveFourthField()
	}
	return m, nil
}

// decodeTrailer reports whether the trailer had the ambiguous four fields.
func (m *Manifest) decodeTrailer(text string) (bool, error) {
	fields := strings.Split(text, sep)
	if len(fields) < 3 || len(fields) > 5 {
		return false, fmt.Errorf("trailer has %d fields, want 3 to 5", len(fields))
	}
	for i := 3; i < len(fields); i++ {
		// strip joins of older writers stored an unset column count as None
		if f := strings.TrimSpace(fields[i]); f == "" || f == "None" {
			fields[i] = "0"
		}
	}
	values, err := atois(fields, 1)
	if err != nil {
		return false, err
	}
	m.Width, m.Height, m.Space = values[0], values[1], values[2]
	if len(values) > 3 {
		m.Columns = values[3]
	}
	if len(values) > 4 {
		m.PaletteHeight = values[4]
	}
	return len(values) == 4, nil
}

// resolveFourthField settles w|h|space|n trailers. Older writers stored the
// grid column count there, others the palette height. A column count whose
// grid does not fit the recorded area is read as a palette height.
func (m *Manifest) resolveFourthField() {
	if m.Columns == 0 {
		return
	}
	for _, e := range m.Entries {
		if e.Placed {
			return
		}
	}
	if m.fits() {
		return
	}
	m.PaletteHeight, m.Columns = m.Columns, 0
}

func decodeEntry(text string) (Entry, error) {
	fields := strings.Split(text, sep)
	if len(fields) != 3 && len(fields) != 5 {
		return Entry{}, fmt.Errorf("entry has %d fields, want 3 or 5", len(fields))
	}
	values, err := atois(fields[1:], 2)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Name: fields[0], Width: values[0], Height: values[1]}
	if len(values) == 4 {
		e.X, e.Y, e.Placed = values[2], values[3], true
	}
	return e, nil
}

// atois parses fields numbered from first for error messages.
func atois(fields []string, first int) ([]int, error) {
	values := make([]int, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		v, err := strconv.Atoi(f)
		if err != nil {
			// older writers stored scaled sizes as floats
			fv, ferr := strconv.ParseFloat(f, 64)
			if ferr != nil {
				return nil, fmt.Errorf("field %d: %q is not a number", first+i, f)
			}
			v = int(fv)
		}
		values[i] = v
	}
	return values, nil
}

type Encoder struct {
	w   io.Writer
	enc encoding.Encoding
}

// NewEncoder writes manifests in enc; nil means UTF-8.
func NewEncoder(w io.Writer, enc encoding.Encoding) *Encoder {
	if enc == nil {
		enc = unicode.UTF8
	}
	return &Encoder{w: w, enc: enc}
}

func (encoder *Encoder) Encode(m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}

	placements, err := m.Placements()
	if err != nil {
		return err
	}

	tw := transform.NewWriter(encoder.w, encoder.enc.NewEncoder())
	bw := bufio.NewWriter(tw)
	for _, p := range placements {
		fmt.Fprintf(bw, "%s|%d|%d|%d|%d\n", p.Name, p.Width, p.Height, p.X, p.Y)
	}
	fmt.Fprintf(bw, "%d|%d|%d|%d|%d", m.Width, m.Height, m.Space, m.Columns, m.PaletteHeight)
	if err := bw.Flush(); err != nil {
		return err
	}
	return tw.Close()
}
