package pal

import (
	"errors"
	"fmt"
	"image/color"
	"io"
)

type Channel uint8

const (
	ChannelAlpha Channel = iota
	ChannelR
	ChannelG
	ChannelB
	ChannelGray
	ChannelRGB
	ChannelARGB
)

var ErrTooManyColors = errors.New("pal: too many colors")

func (channel Channel) depth() int {
	switch channel {
	case ChannelAlpha, ChannelR, ChannelG, ChannelB, ChannelGray:
		return 1
	case ChannelRGB:
		return 3
	case ChannelARGB:
		return 4
	}
	return 0
}

type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

func (decoder *Decoder) Decode(channel Channel, size int) (Palette, error) {
	depth := channel.depth()
	if depth == 0 {
		return nil, fmt.Errorf("pal: unknown channel %d", channel)
	}
	pal := make(Palette, size)
	buf := make([]byte, depth)

	for i := 0; i < size; i++ {
		if _, err := io.ReadFull(decoder.r, buf); err != nil {
			return nil, err
		}
		var c color.NRGBA
		switch channel {
		case ChannelAlpha:
			c = color.NRGBA{A: buf[0]}
		case ChannelR:
			c = color.NRGBA{R: buf[0], A: 255}
		case ChannelG:
			c = color.NRGBA{G: buf[0], A: 255}
		case ChannelB:
			c = color.NRGBA{B: buf[0], A: 255}
		case ChannelGray:
			c = color.NRGBA{R: buf[0], G: buf[0], B: buf[0], A: 255}
		case ChannelRGB:
			c = color.NRGBA{R: buf[0], G: buf[1], B: buf[2], A: 255}
		case ChannelARGB:
			c = color.NRGBA{R: buf[1], G: buf[2], B: buf[3], A: buf[0]}
		}
		pal[i] = c
	}
	return pal, nil
}

type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (encoder *Encoder) Encode(channel Channel, pal Palette) error {
	depth := channel.depth()
	if depth == 0 {
		return fmt.Errorf("pal: unknown channel %d", channel)
	}
	buf := make([]byte, 0, depth*len(pal))
	for _, c := range pal {
		switch channel {
		case ChannelAlpha:
			buf = append(buf, c.A)
		case ChannelR:
			buf = append(buf, c.R)
		case ChannelG:
			buf = append(buf, c.G)
		case ChannelB:
			buf = append(buf, c.B)
		case ChannelGray:
			y := color.GrayModel.Convert(c).(color.Gray).Y
			buf = append(buf, y)
		case ChannelRGB:
			buf = append(buf, c.R, c.G, c.B)
		case ChannelARGB:
			buf = append(buf, c.A, c.R, c.G, c.B)
		}
	}
	_, err := encoder.w.Write(buf)
	return err
}

// EncodeACT writes an Adobe color table: 256 RGB triplets, the number of
// colors used and the index of the transparent color (0xFFFF for none).
func EncodeACT(w io.Writer, pal Palette) error {
	if len(pal) > 256 {
		return fmt.Errorf("%w: %d, an ACT table holds 256", ErrTooManyColors, len(pal))
	}
	table := make(Palette, 256)
	copy(table, pal)
	if err := NewEncoder(w).Encode(ChannelRGB, table); err != nil {
		return err
	}
	transparent := uint16(0xFFFF)
	for i, c := range pal {
		if c.A == 0 {
			transparent = uint16(i)
			break
		}
	}
	n := uint16(len(pal))
	_, err := w.Write([]byte{byte(n >> 8), byte(n), byte(transparent >> 8), byte(transparent)})
	return err
}

// DecodeACT reads a table written by EncodeACT. Tables without the trailer
// hold 256 colors.
func DecodeACT(r io.Reader) (Palette, error) {
	table, err := NewDecoder(r).Decode(ChannelRGB, 256)
	if err != nil {
		return nil, err
	}
	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		return nil, err
	}
	n := int(trailer[0])<<8 | int(trailer[1])
	if n > 0 && n <= 256 {
		table = table[:n]
	}
	if t := int(trailer[2])<<8 | int(trailer[3]); t < len(table) {
		table[t].A = 0
	}
	return table, nil
}
