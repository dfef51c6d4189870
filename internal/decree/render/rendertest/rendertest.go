// Package rendertest builds minimal DOCX packages for tests.
package rendertest

import (
	"archive/zip"
	"bytes"
	"io"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="png" ContentType="image/png"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

// PlaceholderPNG stands in for the template's QR placeholder image.
var PlaceholderPNG = []byte("placeholder-png")

// Template returns a DOCX whose body paragraph contains body as run XML.
func Template(body string, withImage bool) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) {
		w, _ := zw.Create(name)
		_, _ = w.Write(data)
	}

	write("[Content_Types].xml", []byte(contentTypes))
	write("word/document.xml", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p>`+
		body+`</w:p></w:body></w:document>`))
	if withImage {
		write("word/media/qrcode.png", PlaceholderPNG)
	}
	_ = zw.Close()
	return buf.Bytes()
}

// Package returns a zip holding only the content types part and parts.
func Package(parts map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("[Content_Types].xml")
	_, _ = w.Write([]byte(contentTypes))
	for name, data := range parts {
		w, _ := zw.Create(name)
		_, _ = w.Write([]byte(data))
	}
	_ = zw.Close()
	return buf.Bytes()
}

// WithUnreadablePart returns a valid template plus a styles part stored
// with a compression method no reader supports.
func WithUnreadablePart(body string) []byte {
	src := Template(body, true)
	zr, _ := zip.NewReader(bytes.NewReader(src), int64(len(src)))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		_ = zw.Copy(f)
	}
	styles := []byte("<w:styles/>")
	w, _ := zw.CreateRaw(&zip.FileHeader{
		Name:               "word/styles.xml",
		Method:             99,
		CompressedSize64:   uint64(len(styles)),
		UncompressedSize64: uint64(len(styles)),
	})
	_, _ = w.Write(styles)
	_ = zw.Close()
	return buf.Bytes()
}

// Part returns the content of one part of a DOCX, or nil.
func Part(doc []byte, name string) []byte {
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		return data
	}
	return nil
}
