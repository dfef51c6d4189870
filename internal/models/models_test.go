package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_Validate(t *testing.T) {
	t.Run("valid settings", func(t *testing.T) {
		s := Settings{NumberFormat: "{NOMOR}/SK/{BL_ROMA}/{TH}", VerifyBaseURL: "https://sk.example.org"}
		assert.NoError(t, s.Validate())
	})

	t.Run("missing number format reports json name", func(t *testing.T) {
		err := Settings{}.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "numberFormat")
	})

	t.Run("bad verify url", func(t *testing.T) {
		err := Settings{NumberFormat: "{NOMOR}", VerifyBaseURL: "not a url"}.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "verifyBaseUrl")
	})

	t.Run("issue date", func(t *testing.T) {
		for _, raw := range []string{"2025-07-01", "01/07/2025", "1 Juli 2025", "45839"} {
			assert.NoError(t, Settings{NumberFormat: "{NOMOR}", IssueDate: raw}.Validate(), raw)
		}

		err := Settings{NumberFormat: "{NOMOR}", IssueDate: "awal Juli"}.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "issueDate")
	})
}

func TestSettings_Merge(t *testing.T) {
	defaults := Settings{NumberFormat: "{NOMOR}/SK", StartSequence: 10, ChairName: "Ketua", DefaultUnit: "MI Ma'arif"}
	got := Settings{StartSequence: 3, ChairName: "H. Ahmad"}.Merge(defaults)

	assert.Equal(t, "{NOMOR}/SK", got.NumberFormat)
	assert.Equal(t, 3, got.StartSequence)
	assert.Equal(t, "H. Ahmad", got.ChairName)
	assert.Equal(t, "MI Ma'arif", got.DefaultUnit)
}

func TestCategory(t *testing.T) {
	assert.True(t, CategoryKamadPLT.IsKamad())
	assert.False(t, CategoryGTY.IsKamad())
	assert.True(t, Category("GTT").IsValid())
	assert.False(t, Category("Honorer").IsValid())
	assert.Equal(t, "Guru Tetap Yayasan", CategoryGTY.Label())
}

func TestCandidate_DisplayName(t *testing.T) {
	assert.Equal(t, "Siti", Candidate{ID: "c1", Name: "Siti"}.DisplayName())
	assert.Equal(t, "c1", Candidate{ID: "c1"}.DisplayName())
	assert.Equal(t, "(tanpa nama)", Candidate{}.DisplayName())
}
