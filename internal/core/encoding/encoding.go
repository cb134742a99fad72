// Package encoding detects and decodes the text encoding of raw report bytes
// Partner exports arrive as UTF-8 or UTF-16 (with or without a BOM) and some
// carry a leading separator directive line such as SEP=, which is stripped
// before the header is parsed
package encoding

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	perr "donorpipe/internal/platform/errors"
)

// Name identifies a supported text encoding
type Name string

// Supported encodings, a small closed set on purpose
const (
	UTF8    Name = "utf-8"
	UTF16LE Name = "utf-16le"
	UTF16BE Name = "utf-16be"
)

// diagBytes is how many leading raw bytes a DecodingError carries
const diagBytes = 32

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Result is the outcome of a successful detection
type Result struct {
	Encoding Name
	Text     string
	// Separator holds the delimiter declared by a SEP= directive line, if one
	// was present and stripped; zero otherwise
	Separator rune
}

// Detect inspects buf, decodes it to text, and strips any separator directive
// line. The candidate decoders are tried in a fixed order: BOM match first,
// then a byte distribution heuristic for BOM-less UTF-16, then UTF-8
func Detect(buf []byte) (Result, error) {
	if len(buf) == 0 {
		return Result{}, decodeErr(buf, "empty input")
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		if !utf8.Valid(buf[len(bomUTF8):]) {
			return Result{}, decodeErr(buf, "utf-8 BOM but invalid utf-8 payload")
		}
		return stripDirective(Result{Encoding: UTF8, Text: string(buf[len(bomUTF8):])}), nil

	case bytes.HasPrefix(buf, bomUTF16LE):
		text, err := decodeUTF16(buf, unicode.LittleEndian)
		if err != nil {
			return Result{}, decodeErr(buf, "utf-16le decode failed")
		}
		return stripDirective(Result{Encoding: UTF16LE, Text: text}), nil

	case bytes.HasPrefix(buf, bomUTF16BE):
		text, err := decodeUTF16(buf, unicode.BigEndian)
		if err != nil {
			return Result{}, decodeErr(buf, "utf-16be decode failed")
		}
		return stripDirective(Result{Encoding: UTF16BE, Text: text}), nil
	}

	// no BOM, so fall back on byte distribution
	if endian, ok := sniffUTF16(buf); ok {
		text, err := decodeUTF16NoBOM(buf, endian)
		if err == nil {
			name := UTF16LE
			if endian == unicode.BigEndian {
				name = UTF16BE
			}
			return stripDirective(Result{Encoding: name, Text: text}), nil
		}
	}

	if utf8.Valid(buf) {
		return stripDirective(Result{Encoding: UTF8, Text: string(buf)}), nil
	}

	return Result{}, decodeErr(buf, "no supported encoding matched")
}

// sniffUTF16 reports whether buf looks like BOM-less UTF-16 and which byte
// order. ASCII-heavy UTF-16 text has a null in every other position: even
// offsets for big endian, odd offsets for little endian
func sniffUTF16(buf []byte) (unicode.Endianness, bool) {
	n := len(buf)
	if n < 4 {
		return unicode.LittleEndian, false
	}
	if n > 512 {
		n = 512
	}
	var evenNull, oddNull int
	for i := 0; i < n; i++ {
		if buf[i] != 0 {
			continue
		}
		if i%2 == 0 {
			evenNull++
		} else {
			oddNull++
		}
	}
	pairs := n / 2
	// require nulls in at least 60% of the expected positions
	threshold := pairs * 6 / 10
	if oddNull >= threshold && oddNull > evenNull*2 {
		return unicode.LittleEndian, true
	}
	if evenNull >= threshold && evenNull > oddNull*2 {
		return unicode.BigEndian, true
	}
	return unicode.LittleEndian, false
}

func decodeUTF16(buf []byte, e unicode.Endianness) (string, error) {
	dec := unicode.UTF16(e, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(buf)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeUTF16NoBOM(buf []byte, e unicode.Endianness) (string, error) {
	dec := unicode.UTF16(e, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(buf)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// stripDirective removes a single leading SEP= line when present
// Excel writes these so the delimiter survives a double click
func stripDirective(r Result) Result {
	text := r.Text
	nl := strings.IndexByte(text, '\n')
	first := text
	if nl >= 0 {
		first = text[:nl]
	}
	trimmed := strings.TrimRight(first, "\r")
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SEP=") {
		return r
	}
	if sep := trimmed[4:]; sep != "" {
		r.Separator, _ = utf8.DecodeRuneInString(sep)
	}
	if nl >= 0 {
		r.Text = text[nl+1:]
	} else {
		r.Text = ""
	}
	return r
}

// decodeErr builds the DecodingError with leading raw bytes for diagnostics
func decodeErr(buf []byte, msg string) error {
	n := len(buf)
	if n > diagBytes {
		n = diagBytes
	}
	return perr.Newf(perr.ErrorCodeDecoding, "%s (first %d bytes: %s)", msg, n, fmt.Sprintf("% x", buf[:n]))
}
