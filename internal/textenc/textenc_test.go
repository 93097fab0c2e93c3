package textenc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestDetectEmpty(t *testing.T) {
	r := Detect(nil)
	assert.Equal(t, "utf-8", r.Encoding)
}

func TestDetectASCII(t *testing.T) {
	r := Detect([]byte("plain text\n"))
	assert.Equal(t, "ascii", r.Encoding)
	assert.False(t, r.HasBOM)
}

func TestDetectUTF8(t *testing.T) {
	r := Detect([]byte("héllo wörld"))
	assert.Equal(t, "utf-8", r.Encoding)
}

func TestDetectUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	r := Detect(data)
	assert.Equal(t, "utf-8", r.Encoding)
	assert.True(t, r.HasBOM)

	assert.Equal(t, "hello", Normalize(data, r))
}

func TestDetectUTF16LEBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("hi"))
	require.NoError(t, err)

	r := Detect(data)
	assert.Equal(t, "utf-16le", r.Encoding)
	assert.True(t, r.HasBOM)
	assert.Equal(t, "hi", Normalize(data, r))
}

func TestDetectWindows1251(t *testing.T) {
	enc := charmap.Windows1251.NewEncoder()
	data, err := enc.Bytes([]byte("привет мир привет мир"))
	require.NoError(t, err)

	r := Detect(data)
	assert.Equal(t, "windows-1251", r.Encoding)
	assert.Equal(t, "привет мир привет мир", Normalize(data, r))
}

func TestNormalizeInvalidUTF8UsesReplacement(t *testing.T) {
	// Valid UTF-8 prefix followed by a stray continuation byte.
	data := []byte("ok \xc3\x28")
	out := Normalize(data, Result{Encoding: "utf-8"})
	assert.Contains(t, out, "ok ")
	assert.Contains(t, out, "�")
}

func TestReadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("content\n"), 0644))

	content, r, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content\n", content)
	assert.Equal(t, "ascii", r.Encoding)
}

func TestReadFileMissing(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
