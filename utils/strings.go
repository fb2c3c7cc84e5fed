package utils

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// LookupEncoding resolves a WHATWG label ("utf-8", "windows-1252", ...) or an
// IBM code page name ("cp866", "cp437") to an encoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "utf8", "utf-8":
		return unicode.UTF8, nil
	case "cp866", "ibm866":
		return charmap.CodePage866, nil
	case "cp437", "ibm437":
		return charmap.CodePage437, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding: %s", name)
	}
	return enc, nil
}

// EncodingName returns the canonical label of enc, or "utf-8" if it has none.
func EncodingName(enc encoding.Encoding) string {
	if name, err := htmlindex.Name(enc); err == nil {
		return name
	}
	if c, ok := enc.(*charmap.Charmap); ok {
		return c.String()
	}
	return "utf-8"
}
