package classify

import (
	"testing"
	"time"

	"decree-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func TestClassify_Tendik_IgnoresTenure(t *testing.T) {
	e := newTestEngine()
	tenures := []interface{}{nil, "", "2001-01-01", "2025-07-01", "tidak jelas", 30000}

	for _, tenure := range tenures {
		c := models.Candidate{Name: "Ahmad Fauzi", Education: "SMA", Role: "Operator", TenureStart: tenure}
		assert.Equal(t, models.CategoryTendik, e.Classify(c), "tenure %v", tenure)
	}
}

func TestClassify_TenureThreshold(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name   string
		tenure interface{}
		want   models.Category
	}{
		{"exactly two years", "2023-07-15", models.CategoryGTY},
		{"one day short of two years", "2023-07-16", models.CategoryGTT},
		{"month not yet reached", "15/08/2023", models.CategoryGTT},
		{"long tenure", "1 Januari 2010", models.CategoryGTY},
		{"spreadsheet serial", 40179, models.CategoryGTY},
		{"started this year", "2025-01-02", models.CategoryGTT},
		{"missing tenure", nil, models.CategoryGTT},
		{"unparseable tenure", "sejak dulu", models.CategoryGTT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.Candidate{Name: "Siti Aminah", Education: "S1 Pendidikan", Role: "Guru Kelas", TenureStart: tt.tenure}
			assert.Equal(t, tt.want, e.Classify(c))
		})
	}
}

func TestClassify_TitleInNameQualifies(t *testing.T) {
	e := newTestEngine()
	c := models.Candidate{Name: "Muhammad Rizki, S.Pd.I", Education: "", Role: "Guru", TenureStart: "2015-01-01"}
	assert.Equal(t, models.CategoryGTY, e.Classify(c))

	c = models.Candidate{Name: "Drs. Suparman", Role: "Guru", TenureStart: "2024-12-01"}
	assert.Equal(t, models.CategoryGTT, e.Classify(c))
}

func TestClassify_OverrideWins(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		override string
		want     models.Category
	}{
		{"gty", models.CategoryGTY},
		{"GTY", models.CategoryGTY},
		{"SK GTT", models.CategoryGTT},
		{"Tendik", models.CategoryTendik},
		{"KamadPLT", models.CategoryKamadPLT},
		{"kamad_non_pns", models.CategoryKamadNonPNS},
		{"Kamad PNS", models.CategoryKamadPNS},
	}

	for _, tt := range tests {
		t.Run(tt.override, func(t *testing.T) {
			// Zero tenure and no education would otherwise give Tendik.
			c := models.Candidate{Name: "Budi", Override: tt.override, TenureStart: "2025-07-15"}
			res := e.Explain(c)
			assert.Equal(t, tt.want, res.Category)
			assert.True(t, res.FromOverride)
		})
	}
}

func TestClassify_OverrideKamadResolvesVariant(t *testing.T) {
	e := newTestEngine()
	c := models.Candidate{Name: "Budi", Override: "kepala", NIP: "198501012010011001"}
	assert.Equal(t, models.CategoryKamadPNS, e.Classify(c))
}

func TestClassify_UnknownOverrideFallsThrough(t *testing.T) {
	e := newTestEngine()
	c := models.Candidate{Name: "Budi", Override: "honorer", Education: "SMA"}
	res := e.Explain(c)
	assert.Equal(t, models.CategoryTendik, res.Category)
	assert.False(t, res.FromOverride)
}

func TestClassify_Kamad(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		name string
		c    models.Candidate
		want models.Category
	}{
		{"plt", models.Candidate{Role: "Plt. Kepala Madrasah", NIP: "198501012010011001"}, models.CategoryKamadPLT},
		{"pelaksana tugas", models.Candidate{Role: "Pelaksana Tugas Kamad"}, models.CategoryKamadPLT},
		{"long nip", models.Candidate{Role: "Kepala Madrasah", NIP: "19850101 201001 1 001"}, models.CategoryKamadPNS},
		{"asn status", models.Candidate{Role: "kamad", Status: "ASN"}, models.CategoryKamadPNS},
		{"non pns status", models.Candidate{Role: "Kepala Sekolah", Status: "Non PNS", NIP: "12345"}, models.CategoryKamadNonPNS},
		{"no signals", models.Candidate{Role: "KEPALA MI"}, models.CategoryKamadNonPNS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Classify(tt.c))
		})
	}
}

func TestClassify_EmptyCandidateDoesNotPanic(t *testing.T) {
	e := newTestEngine()
	assert.NotPanics(t, func() {
		assert.Equal(t, models.CategoryTendik, e.Classify(models.Candidate{}))
	})
}

func TestExplain_FlagsUnparsedTenure(t *testing.T) {
	e := newTestEngine()
	res := e.Explain(models.Candidate{Education: "Sarjana", TenureStart: "??"})
	assert.Equal(t, models.CategoryGTT, res.Category)
	assert.True(t, res.TenureUnparsed)

	res = e.Explain(models.Candidate{Education: "Sarjana"})
	assert.False(t, res.TenureUnparsed)
}

func TestCompletedYears(t *testing.T) {
	start := time.Date(2020, time.March, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 4, CompletedYears(start, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 5, CompletedYears(start, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, CompletedYears(start, time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestHasQualifyingEducation(t *testing.T) {
	assert.True(t, HasQualifyingEducation("S2 Manajemen", ""))
	assert.True(t, HasQualifyingEducation("Magister", ""))
	assert.True(t, HasQualifyingEducation("D4 Teknik", ""))
	assert.True(t, HasQualifyingEducation("", "Nur Hidayah, M.Pd."))
	assert.False(t, HasQualifyingEducation("D3", "Nur Hidayah"))
	assert.False(t, HasQualifyingEducation("", ""))
}
