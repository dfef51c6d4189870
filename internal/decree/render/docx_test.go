package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decree-workers/internal/decree/render/rendertest"
	"decree-workers/internal/decree/rendercontext"
)

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	tpl := rendertest.Template(`<w:r><w:t>Nama: {NAMA}, Nomor: {nomor_sk}, {UNKNOWN}</w:t></w:r>`, false)
	values := rendercontext.Context{"NAMA": "Siti & Co", "nomor_sk": "0001/SK/VII/2025"}

	doc, err := New("").Render(tpl, values, nil)
	require.NoError(t, err)

	body := string(rendertest.Part(doc.Bytes, "word/document.xml"))
	assert.Contains(t, body, "Nama: Siti &amp; Co, Nomor: 0001/SK/VII/2025, {UNKNOWN}")
	assert.Equal(t, 2, doc.Replaced)
	assert.False(t, doc.ImageEmbedded)
	assert.NotNil(t, rendertest.Part(doc.Bytes, "[Content_Types].xml"))
}

func TestRender_PlaceholderSplitAcrossRuns(t *testing.T) {
	tpl := rendertest.Template(`<w:r><w:t>{NA</w:t></w:r><w:proofErr w:type="spellStart"/><w:r><w:t>MA GURU}</w:t></w:r>`, false)

	doc, err := New("").Render(tpl, rendercontext.Context{"NAMA GURU": "Ahmad"}, nil)
	require.NoError(t, err)

	body := string(rendertest.Part(doc.Bytes, "word/document.xml"))
	assert.Contains(t, body, `<w:r><w:t>Ahmad</w:t></w:r><w:proofErr w:type="spellStart"/><w:r><w:t></w:t></w:r>`)
}

func TestRender_EmbedsQR(t *testing.T) {
	tpl := rendertest.Template(`<w:r><w:t>{NAMA}</w:t></w:r>`, true)
	qr := []byte("real-qr")

	doc, err := New(DefaultImagePart).Render(tpl, rendercontext.Context{"NAMA": "x"}, qr)
	require.NoError(t, err)
	assert.True(t, doc.ImageEmbedded)
	assert.Equal(t, qr, rendertest.Part(doc.Bytes, DefaultImagePart))
}

func TestRender_TemplateWithoutImageSlot(t *testing.T) {
	doc, err := New("").Render(rendertest.Template(`<w:r><w:t>x</w:t></w:r>`, false), nil, []byte("qr"))
	require.NoError(t, err)
	assert.False(t, doc.ImageEmbedded)
}

func TestRender_RejectsBrokenTemplates(t *testing.T) {
	_, err := New("").Render([]byte("not a zip"), nil, nil)
	assert.Error(t, err)

	_, err = New("").Render(emptyZip(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestSubstitute_EscapedKey(t *testing.T) {
	out, n := substitute([]byte(`<w:t>{TTL &amp; LAHIR}</w:t>`), rendercontext.Context{"TTL & LAHIR": "Cilacap"})
	assert.Equal(t, 1, n)
	assert.Equal(t, `<w:t>Cilacap</w:t>`, string(out))
}

func emptyZip() []byte {
	// end-of-central-directory record only
	return []byte{0x50, 0x4b, 0x05, 0x06, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
}
