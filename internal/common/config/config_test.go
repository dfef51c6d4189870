package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: decrees
    user: decree
  redis:
    address: localhost:6379
decree:
  number_format: "{NOMOR}/PGRI/{BL_ROMA}/{TAHUN}"
  issue_place: Cilacap
  templates:
    GTY: sk_gty_2025
workers:
  generate-decree-batch:
    enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "decrees", cfg.Database.Elasticsearch.Index)
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
	assert.Equal(t, 256, cfg.Decree.QRSize)
	assert.Equal(t, "word/media/qrcode.png", cfg.Decree.QRImagePart)
	assert.Equal(t, "archives/", cfg.Storage.S3.ArchivePrefix)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "sk_gty_2025", cfg.Decree.Templates["gty"])

	w := GetWorkerConfig(cfg, "generate-decree-batch")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_DecreeSettings(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	s := cfg.Decree.Settings()
	assert.Equal(t, "{NOMOR}/PGRI/{BL_ROMA}/{TAHUN}", s.NumberFormat)
	assert.Equal(t, "Cilacap", s.IssuePlace)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("DECREE_TEST_PG_HOST", "db.internal")
	body := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${DECREE_TEST_PG_HOST}
    database: decrees
    user: decree
  redis:
    address: localhost:6379
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing broker",
			body: "database:\n  postgres:\n    host: x\n",
			want: "camunda.broker_address",
		},
		{
			name: "s3 without bucket",
			body: minimalYAML + "storage:\n  s3:\n    enabled: true\n",
			want: "storage.s3.bucket",
		},
		{
			name: "bad verify url",
			body: strings.Replace(minimalYAML, "  issue_place: Cilacap\n", "  issue_place: Cilacap\n  verify_base_url: not a url\n", 1),
			want: "verifyBaseUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DECREE_S3_BUCKET", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
}

func TestIsWorkerEnabled_DefaultsTrue(t *testing.T) {
	assert.True(t, IsWorkerEnabled(&Config{}, "unknown"))
	assert.False(t, IsWorkerEnabled(&Config{Workers: map[string]WorkerConfig{"w": {Enabled: false}}}, "w"))
}
