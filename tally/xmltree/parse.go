package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	ErrEmptyDocument   = errors.New("empty document")
	ErrUnclosedElement = errors.New("unclosed element")
)

// ParseError reports a document that could not be turned into a tree.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "xmltree: unable to parse document: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var charRef = regexp.MustCompile(`&#(x[0-9a-fA-F]+|[0-9]+);`)

// Parse reads an XML document into a tree rooted at an unnamed document node.
// Control characters (U+0000-U+001F, U+007F-U+009F) are removed first, both
// raw and as character references; tab, CR and LF become spaces.
func Parse(data []byte) (*Node, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	s := StripControl(string(data))
	if strings.TrimSpace(s) == "" {
		return nil, &ParseError{Err: ErrEmptyDocument}
	}

	dec := xml.NewDecoder(strings.NewReader(s))
	dec.CharsetReader = charsetReader

	doc := &Node{}
	stack := []*Node{doc}
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{Name: qualified(t.Name)}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			name := qualified(t.Name)
			if len(stack) == 1 || stack[len(stack)-1].Name != name {
				return nil, &ParseError{Err: fmt.Errorf("unexpected end element </%s>", name)}
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 1 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if len(stack) != 1 {
		return nil, &ParseError{Err: fmt.Errorf("%w <%s>", ErrUnclosedElement, stack[len(stack)-1].Name)}
	}
	if len(doc.Children) == 0 {
		return nil, &ParseError{Err: ErrEmptyDocument}
	}
	return doc, nil
}

// ParseString is Parse for a string.
func ParseString(s string) (*Node, error) {
	return Parse([]byte(s))
}

// Root returns the first top-level element of a parsed document.
func (n *Node) Root() *Node {
	if n == nil {
		return nil
	}
	if n.Name != "" {
		return n
	}
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// StripControl removes C0 and C1 control characters. Tab, CR and LF are
// turned into spaces so that markup split over lines stays well formed.
func StripControl(s string) string {
	s = charRef.ReplaceAllStringFunc(s, func(ref string) string {
		body := ref[2 : len(ref)-1]
		var code int64
		var err error
		if body[0] == 'x' {
			code, err = strconv.ParseInt(body[1:], 16, 32)
		} else {
			code, err = strconv.ParseInt(body, 10, 32)
		}
		if err != nil {
			return ref
		}
		if isControl(rune(code)) {
			if code == '\t' || code == '\n' || code == '\r' {
				return " "
			}
			return ""
		}
		return ref
	})
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case isControl(r):
			return -1
		}
		return r
	}, s)
}

func isControl(r rune) bool {
	return r <= 0x1F || (r >= 0x7F && r <= 0x9F)
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// toUTF8 converts UTF-16 payloads, which Tally emits on some installations,
// to UTF-8 and drops a UTF-8 byte order mark.
func toUTF8(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}),
		len(data) >= 2 && data[0] == '<' && data[1] == 0:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}),
		len(data) >= 2 && data[0] == 0 && data[1] == '<':
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	}
	return data, nil
}

// charsetReader handles encoding declarations. UTF-16 input has already been
// converted by toUTF8, so such labels pass through unchanged.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	if strings.HasPrefix(l, "utf-16") || l == "utf-8" || l == "utf8" || l == "ascii" || l == "us-ascii" {
		return input, nil
	}
	enc, err := htmlindex.Get(l)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
