// Package export serialises catalogs, vouchers and reports to files a person
// can open: JSON, XML, Excel and PDF, optionally brotli compressed.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/xmltree"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoRenderer    = errors.New("pdf export needs a renderer")
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension is the file extension of f, with the brotli suffix when
// compressed.
func (f Format) Extension(compressed bool) string {
	ext := "." + string(f)
	if compressed {
		ext += ".br"
	}
	return ext
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXML:
		return "application/xml"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Renderer turns an HTML page into a PDF document.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

type Options struct {
	// Title heads the PDF dump.
	Title string
	// Brotli compresses the output stream.
	Brotli   bool
	Renderer Renderer
}

// Write serialises v in format f to w.
func Write(ctx context.Context, w io.Writer, f Format, v any, opts Options) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatJSON:
		data, err = JSON(v)
	case FormatXML:
		data, err = XML(v)
	case FormatExcel:
		data, err = Excel(v)
	case FormatPDF:
		if opts.Renderer == nil {
			return ErrNoRenderer
		}
		data, err = PDF(ctx, opts.Renderer, opts.Title, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		tally.LogError("export", "Write", string(f), nil, err)
		return err
	}

	if !opts.Brotli {
		_, err = w.Write(data)
		return err
	}
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	if _, err := bw.Write(data); err != nil {
		return err
	}
	return bw.Close()
}

// JSON is the pretty printed passthrough. HTML characters are kept as is.
func JSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// XML renders v through the same generic tree walk used for Tally payloads.
// Values that are not an object with a single key are wrapped in DATA.
func XML(v any) ([]byte, error) {
	g, err := generic(v)
	if err != nil {
		return nil, err
	}
	if m, ok := g.(map[string]any); !ok || len(m) != 1 {
		g = map[string]any{"DATA": g}
	}
	return []byte(xml.Header + xmltree.MarshalValue(g)), nil
}

// PDF renders the JSON dump of v as preformatted text.
func PDF(ctx context.Context, r Renderer, title string, v any) ([]byte, error) {
	data, err := JSON(v)
	if err != nil {
		return nil, err
	}
	return r.RenderHTML(ctx, dumpPage(title, string(data)))
}

func dumpPage(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title><style>body{font-family:sans-serif}pre{font-size:10px;white-space:pre-wrap}</style></head><body>")
	if title != "" {
		b.WriteString("<h1>")
		b.WriteString(html.EscapeString(title))
		b.WriteString("</h1>")
	}
	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(body))
	b.WriteString("</pre></body></html>")
	return b.String()
}

// generic converts v to the map/slice/scalar shape produced by
// encoding/json, keeping numbers as json.Number so amounts are not rounded.
func generic(v any) (any, error) {
	switch t := v.(type) {
	case *xmltree.Node:
		return t.Map(), nil
	case map[string]any, []any:
		return t, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
