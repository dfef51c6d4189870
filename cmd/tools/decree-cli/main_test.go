package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decree-workers/internal/decree/render/rendertest"
	"decree-workers/pkg/registry"
)

const candidatesYAML = `settings:
  issuePlace: Cilacap
  issueDate: "2024-07-01"
candidates:
  - id: c-1
    name: Siti Aminah, S.Pd
    education: S1 Pendidikan
    tenureStart: 2015-07-15
  - id: c-2
    name: Budi
    education: SMA
  - id: c-3
    name: Ahmad Kamad
    role: Kepala Madrasah
    status: PNS
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "batch.yaml", []byte(candidatesYAML))

	out, err := execute(t, "classify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "GTY")
	assert.Contains(t, out, "Tendik")
	assert.Contains(t, out, "KamadPNS")
	assert.Contains(t, out, "sk_kamad_pns")
}

func TestClassifyCommand_BareList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "list.json", []byte(`[{"name": "Rina", "override": "GTT"}]`))

	out, err := execute(t, "classify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "override")
}

func TestGenerateCommand_Offline(t *testing.T) {
	dir := t.TempDir()
	tmplDir := filepath.Join(dir, "templates")
	require.NoError(t, os.Mkdir(tmplDir, 0o755))
	body := `<w:r><w:t>{NAMA} {NOMOR_SK}</w:t></w:r>`
	writeFile(t, tmplDir, "sk_gty.docx", rendertest.Template(body, true))
	writeFile(t, tmplDir, "sk_kamad_pns.docx", rendertest.Template(body, true))
	path := writeFile(t, dir, "batch.yaml", []byte(candidatesYAML))
	archivePath := filepath.Join(dir, "out.zip")

	out, err := execute(t, "generate", path, "--templates", tmplDir, "--out", archivePath, "--start", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "2 generated, 1 failed")
	assert.Contains(t, out, "TEMPLATE_NOT_FOUND")
	assert.Contains(t, out, "next sequence 14")

	data, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Len(t, names, 3)
	assert.Contains(t, names, "error_report.json")
}

func TestGenerateCommand_NothingGenerated(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "batch.yaml", []byte(candidatesYAML))

	_, err := execute(t, "generate", path, "--templates", filepath.Join(dir, "none"), "--out", filepath.Join(dir, "out.zip"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.zip"))
}

func TestTemplatesCommands(t *testing.T) {
	dir := t.TempDir()
	regPath := filepath.Join(dir, "registry.json")

	_, err := execute(t, "templates", "--registry", regPath, "add", "--id", "sk_gty_2024", "--category", "GTY", "--active")
	require.NoError(t, err)
	_, err = execute(t, "templates", "--registry", regPath, "add", "--id", "sk_gty_2025", "--category", "GTY")
	require.NoError(t, err)

	_, err = execute(t, "templates", "--registry", regPath, "add", "--id", "x", "--category", "Honorer")
	assert.Error(t, err)

	out, err := execute(t, "templates", "--registry", regPath, "activate", "sk_gty_2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Activated template: sk_gty_2025")

	reg, err := registry.LoadRegistry(regPath)
	require.NoError(t, err)
	active, ok := reg.ForCategory("GTY")
	require.True(t, ok)
	assert.Equal(t, "sk_gty_2025", active.ID)

	out, err = execute(t, "templates", "--registry", regPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "sk_gty_2024.docx")

	_, err = execute(t, "templates", "--registry", regPath, "validate", "--templates", dir)
	assert.ErrorContains(t, err, "sk_gty_2025.docx")
}
