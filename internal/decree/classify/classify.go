// Package classify derives the decree category of a candidate from override,
// role, education and tenure signals.
package classify

import (
	"strings"
	"time"
	"unicode"

	"decree-workers/internal/decree/dates"
	"decree-workers/internal/models"
)

// MinPermanentYears is the completed tenure needed for GTY.
const MinPermanentYears = 2

var degreeMarkers = []string{"s1", "sarjana", "s2", "magister", "s3", "doktor", "d4", "div"}

var titleMarkers = []string{
	"s.pd", "m.pd", "s.ag", "m.ag", "s.kom", "m.kom", "s.si", "m.si",
	"s.sos", "s.hum", "s.ip", "s.th", "s.psi", "s.e.", "s.h.", "s.t.", "m.m.",
	"drs.", "dra.", "dr.", "lc.",
}

// Engine classifies candidates. The zero value is not usable; use New.
type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock fixes "now" for tenure calculations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result carries the category plus the signals that produced it.
type Result struct {
	Category       models.Category
	FromOverride   bool
	TenureYears    int
	TenureUnparsed bool // tenure start present but unreadable, degraded to GTT
}

// Classify returns the decree category for c.
func (e *Engine) Classify(c models.Candidate) models.Category {
	return e.Explain(c).Category
}

// Explain is Classify with the intermediate signals kept.
func (e *Engine) Explain(c models.Candidate) Result {
	if cat, ok := e.fromOverride(c); ok {
		return Result{Category: cat, FromOverride: true}
	}

	role := strings.ToLower(c.Role)
	if strings.Contains(role, "kepala") || strings.Contains(role, "kamad") {
		return Result{Category: kamadVariant(c)}
	}

	if !HasQualifyingEducation(c.Education, c.Name) {
		return Result{Category: models.CategoryTendik}
	}

	start, ok := dates.Parse(c.TenureStart)
	if !ok {
		return Result{Category: models.CategoryGTT, TenureUnparsed: !isBlank(c.TenureStart)}
	}

	years := CompletedYears(start, e.now())
	if years >= MinPermanentYears {
		return Result{Category: models.CategoryGTY, TenureYears: years}
	}
	return Result{Category: models.CategoryGTT, TenureYears: years}
}

func (e *Engine) fromOverride(c models.Candidate) (models.Category, bool) {
	raw := strings.ToLower(strings.TrimSpace(c.Override))
	if raw == "" {
		return "", false
	}

	compact := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)

	switch {
	case compact == "kamadplt":
		return models.CategoryKamadPLT, true
	case compact == "kamadnonpns":
		return models.CategoryKamadNonPNS, true
	case compact == "kamadpns":
		return models.CategoryKamadPNS, true
	case strings.Contains(raw, "gty"):
		return models.CategoryGTY, true
	case strings.Contains(raw, "gtt"):
		return models.CategoryGTT, true
	case strings.Contains(raw, "tendik"):
		return models.CategoryTendik, true
	case strings.Contains(raw, "kamad") || strings.Contains(raw, "kepala"):
		return kamadVariant(c), true
	}
	return "", false
}

func kamadVariant(c models.Candidate) models.Category {
	role := strings.ToLower(c.Role)
	if strings.Contains(role, "plt") || strings.Contains(role, "pelaksana") {
		return models.CategoryKamadPLT
	}
	if countDigits(c.NIP) > 10 || isCivilServant(c.Status) {
		return models.CategoryKamadPNS
	}
	return models.CategoryKamadNonPNS
}

func isCivilServant(status string) bool {
	s := strings.ToLower(status)
	if strings.Contains(s, "non") {
		return false
	}
	return strings.Contains(s, "pns") || strings.Contains(s, "asn")
}

// HasQualifyingEducation reports whether the education text names a degree
// of at least D4/S1, or the name carries an academic title.
func HasQualifyingEducation(education, name string) bool {
	edu := strings.ToLower(education)
	for _, m := range degreeMarkers {
		if strings.Contains(edu, m) {
			return true
		}
	}
	n := strings.ToLower(name)
	for _, m := range titleMarkers {
		if strings.Contains(n, m) {
			return true
		}
	}
	return false
}

// CompletedYears is the number of whole years from start to now.
func CompletedYears(start, now time.Time) int {
	years := now.Year() - start.Year()
	if now.Month() < start.Month() || (now.Month() == start.Month() && now.Day() < start.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
