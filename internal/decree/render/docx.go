// Package render fills placeholders in a DOCX template and swaps in the
// verification QR image.
package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"decree-workers/internal/decree/rendercontext"
)

// DefaultImagePart is the package part holding the QR placeholder image.
const DefaultImagePart = "word/media/qrcode.png"

var (
	placeholderRe = regexp.MustCompile(`\{([^{}]*)\}`)
	xmlTagRe      = regexp.MustCompile(`<[^>]*>`)
	textPartRe    = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)
)

// Document is a rendered decree.
type Document struct {
	Bytes         []byte
	ImageEmbedded bool // the template carried the QR image part and it was replaced
	Replaced      int  // placeholders substituted
}

// Renderer substitutes {KEY} placeholders in the text parts of a DOCX.
type Renderer struct {
	imagePart string
}

func New(imagePart string) *Renderer {
	if imagePart == "" {
		imagePart = DefaultImagePart
	}
	return &Renderer{imagePart: imagePart}
}

// Render returns a new document. Placeholders whose key is not in values
// are left as they are. Word may split a placeholder across runs; the
// markup between the braces is kept after the substituted value.
func (r *Renderer) Render(template []byte, values rendercontext.Context, qr []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}

	var (
		out     bytes.Buffer
		doc     = &Document{}
		hasBody bool
	)
	zw := zip.NewWriter(&out)

	for _, f := range zr.File {
		data, err := readPart(f)
		if err != nil {
			return nil, err
		}

		switch {
		case textPartRe.MatchString(f.Name):
			if f.Name == "word/document.xml" {
				hasBody = true
			}
			var n int
			data, n = substitute(data, values)
			doc.Replaced += n
		case f.Name == r.imagePart && len(qr) > 0:
			data = qr
			doc.ImageEmbedded = true
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if !hasBody {
		return nil, fmt.Errorf("template has no word/document.xml")
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close document: %w", err)
	}

	doc.Bytes = out.Bytes()
	return doc, nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func substitute(xmlData []byte, values rendercontext.Context) ([]byte, int) {
	n := 0
	out := placeholderRe.ReplaceAllFunc(xmlData, func(match []byte) []byte {
		inner := match[1 : len(match)-1]
		key := strings.TrimSpace(xml2text(inner))
		val, ok := values[key]
		if !ok {
			return match
		}
		n++

		var buf bytes.Buffer
		_ = xml.EscapeText(&buf, []byte(val))
		for _, tag := range xmlTagRe.FindAll(inner, -1) {
			buf.Write(tag)
		}
		return buf.Bytes()
	})
	return out, n
}

// xml2text strips markup and unescapes the entities Word writes in run text.
func xml2text(b []byte) string {
	s := xmlTagRe.ReplaceAllString(string(b), "")
	return entityReplacer.Replace(s)
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)
