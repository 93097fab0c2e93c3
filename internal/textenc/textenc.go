// Package textenc normalizes arbitrary file bytes to UTF-8 so rendered
// documents never carry mojibake or invalid sequences. Detection is
// heuristic: BOM first, then UTF-8 validation, then a small set of legacy
// single-byte candidates.
package textenc

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Result struct {
	Encoding   string
	Confidence float64
	HasBOM     bool
}

const maxSample = 8192

func Detect(data []byte) Result {
	if len(data) == 0 {
		return Result{Encoding: "utf-8", Confidence: 1.0}
	}

	if r, ok := detectBOM(data); ok {
		return r
	}

	sample := data
	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}

	if isASCII(sample) {
		return Result{Encoding: "ascii", Confidence: 1.0}
	}
	if utf8.Valid(sample) {
		return Result{Encoding: "utf-8", Confidence: 0.95}
	}
	if r, ok := detectUTF16(sample); ok {
		return r
	}

	// Cyrillic-heavy content favours windows-1251, otherwise assume the
	// western European default.
	if scoreHighBytes(sample, 0xC0, 0xFF) > 0.25 {
		return Result{Encoding: "windows-1251", Confidence: 0.6}
	}
	return Result{Encoding: "windows-1252", Confidence: 0.5}
}

func detectBOM(data []byte) (Result, bool) {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return Result{Encoding: "utf-8", Confidence: 1.0, HasBOM: true}, true
	}
	if len(data) >= 2 {
		if bytes.Equal(data[:2], []byte{0xFF, 0xFE}) {
			return Result{Encoding: "utf-16le", Confidence: 1.0, HasBOM: true}, true
		}
		if bytes.Equal(data[:2], []byte{0xFE, 0xFF}) {
			return Result{Encoding: "utf-16be", Confidence: 1.0, HasBOM: true}, true
		}
	}
	return Result{}, false
}

func detectUTF16(data []byte) (Result, bool) {
	if len(data) < 2 || len(data)%2 != 0 {
		return Result{}, false
	}

	oddNulls, evenNulls := 0, 0
	for i := 0; i < len(data); i++ {
		if data[i] == 0 {
			if i%2 == 0 {
				evenNulls++
			} else {
				oddNulls++
			}
		}
	}

	pairs := len(data) / 2
	if float64(oddNulls)/float64(pairs) > 0.75 {
		return Result{Encoding: "utf-16le", Confidence: 0.8}, true
	}
	if float64(evenNulls)/float64(pairs) > 0.75 {
		return Result{Encoding: "utf-16be", Confidence: 0.8}, true
	}
	return Result{}, false
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b > 127 {
			return false
		}
	}
	return true
}

func scoreHighBytes(data []byte, lo, hi byte) float64 {
	count := 0
	for _, b := range data {
		if b >= lo && b <= hi {
			count++
		}
	}
	return float64(count) / float64(len(data))
}

// Normalize converts detected bytes to a valid UTF-8 string. Undecodable
// sequences become replacement runes, never an error.
func Normalize(data []byte, detected Result) string {
	data = stripBOM(data, detected)

	switch detected.Encoding {
	case "ascii":
		return string(data)
	case "utf-8":
		return string(bytes.ToValidUTF8(data, []byte("�")))
	case "utf-16le":
		return decode(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case "utf-16be":
		return decode(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	case "windows-1251":
		return decode(data, charmap.Windows1251.NewDecoder())
	case "windows-1252":
		return decode(data, charmap.Windows1252.NewDecoder())
	case "iso-8859-1":
		return decode(data, charmap.ISO8859_1.NewDecoder())
	case "koi8r":
		return decode(data, charmap.KOI8R.NewDecoder())
	default:
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
}

func stripBOM(data []byte, detected Result) []byte {
	if !detected.HasBOM {
		return data
	}
	switch detected.Encoding {
	case "utf-8":
		if len(data) >= 3 {
			return data[3:]
		}
	case "utf-16le", "utf-16be":
		if len(data) >= 2 {
			return data[2:]
		}
	}
	return data
}

func decode(data []byte, decoder *encoding.Decoder) string {
	if len(data) == 0 {
		return ""
	}
	reader := transform.NewReader(bytes.NewReader(data), decoder)
	result, err := io.ReadAll(reader)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
	return string(bytes.ToValidUTF8(result, []byte("�")))
}

// ReadFile reads a file and returns its content as UTF-8.
func ReadFile(path string) (string, Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Result{}, err
	}
	detected := Detect(data)
	return Normalize(data, detected), detected, nil
}
