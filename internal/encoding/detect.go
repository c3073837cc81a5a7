// Package encoding turns uploaded text of unknown encoding into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffLen = 4096

// Fallback is used when nothing better can be inferred. Spreadsheet exports
// from Windows machines are the usual source of non-UTF-8 uploads.
var Fallback xencoding.Encoding = charmap.Windows1252

type bom struct {
	prefix  []byte
	charset string
	enc     xencoding.Encoding
}

var boms = []bom{
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8", nil},
	{[]byte{0xFF, 0xFE}, "UTF-16LE", unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)},
	{[]byte{0xFE, 0xFF}, "UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)},
}

// Decoded is a UTF-8 view of the input and the charset it was read as.
type Decoded struct {
	io.Reader
	Charset string
}

// NewUTF8Reader returns a reader yielding the input as UTF-8.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	d, err := Decode(r)
	if err != nil {
		return nil, err
	}

	return d.Reader, nil
}

// Decode sniffs the beginning of r. A byte order mark decides outright.
// Otherwise valid UTF-8 passes through, chardet picks among the charsets
// x/text knows, and Fallback covers the rest.
func Decode(r io.Reader) (*Decoded, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("sniffing encoding: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.prefix) {
			continue
		}

		if b.enc == nil {
			_, _ = br.Discard(len(b.prefix))
			return &Decoded{Reader: br, Charset: b.charset}, nil
		}

		return &Decoded{Reader: transform.NewReader(br, b.enc.NewDecoder()), Charset: b.charset}, nil
	}

	if validUTF8Prefix(head, len(head) == sniffLen) {
		return &Decoded{Reader: br, Charset: "UTF-8"}, nil
	}

	charset, enc := detect(head)

	return &Decoded{Reader: transform.NewReader(br, enc.NewDecoder()), Charset: charset}, nil
}

// validUTF8Prefix tolerates a rune cut off by the sniff window.
func validUTF8Prefix(b []byte, truncated bool) bool {
	if !truncated {
		return utf8.Valid(b)
	}

	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}

		b = b[:len(b)-1]
	}

	return utf8.Valid(b)
}

// trusted lists the chardet results worth acting on. Short price lists give
// chardet little to go on, so anything else is read as Fallback.
var trusted = map[string]bool{
	"ISO-8859-1":   true,
	"windows-1252": true,
	"ISO-8859-9":   true,
	"UTF-16LE":     true,
	"UTF-16BE":     true,
}

func detect(head []byte) (string, xencoding.Encoding) {
	fallback, _ := htmlindex.Name(Fallback)

	res, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil || !trusted[res.Charset] {
		return fallback, Fallback
	}

	// htmlindex resolves ISO-8859-1 to windows-1252, its superset.
	enc, err := htmlindex.Get(res.Charset)
	if err != nil {
		return fallback, Fallback
	}

	name, err := htmlindex.Name(enc)
	if err != nil {
		name = res.Charset
	}

	return name, enc
}
