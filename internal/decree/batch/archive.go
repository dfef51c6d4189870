package batch

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ReportName is the archive entry listing failed candidates.
const ReportName = "error_report.json"

var unsafeName = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// FileName derives the archive entry for a person, e.g. "SK_Siti_Aminah_S.Pd.docx".
func FileName(name string) string {
	s := unsafeName.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "._")
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	if s == "" {
		s = "tanpa_nama"
	}
	return "SK_" + s + ".docx"
}

// archive accumulates documents and owns filename uniqueness.
type archive struct {
	buf   bytes.Buffer
	zw    *zip.Writer
	names map[string]bool
	now   time.Time
}

func newArchive(now time.Time) *archive {
	a := &archive{names: make(map[string]bool), now: now}
	a.zw = zip.NewWriter(&a.buf)
	return a
}

// add writes data under a unique name derived from person and returns it.
func (a *archive) add(person string, data []byte) (string, error) {
	base := strings.TrimSuffix(FileName(person), ".docx")
	name := base + ".docx"
	for n := 2; a.names[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d.docx", base, n)
	}
	a.names[strings.ToLower(name)] = true
	if err := a.write(name, data); err != nil {
		return "", err
	}
	return name, nil
}

func (a *archive) write(name string, data []byte) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: a.now,
	})
	if err != nil {
		return fmt.Errorf("archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("archive entry %s: %w", name, err)
	}
	return nil
}

func (a *archive) close() ([]byte, error) {
	if err := a.zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return a.buf.Bytes(), nil
}

// Report is the JSON error report embedded in the archive.
type Report struct {
	BatchID      string        `json:"batchId"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	State        State         `json:"state"`
	SuccessCount int           `json:"successCount"`
	ErrorCount   int           `json:"errorCount"`
	Skipped      int           `json:"skipped,omitempty"`
	Errors       []ReportEntry `json:"errors"`
}

type ReportEntry struct {
	No          int    `json:"no"`
	Name        string `json:"name"`
	CandidateID string `json:"candidateId,omitempty"`
	Category    string `json:"category,omitempty"`
	Stage       string `json:"stage"`
	Code        string `json:"code"`
	TemplateID  string `json:"templateId,omitempty"`
	DecreeID    string `json:"decreeId,omitempty"`
	Number      string `json:"decreeNumber,omitempty"`
	Message     string `json:"message"`
}

func buildReport(res *Result, now time.Time) ([]byte, error) {
	rep := Report{
		BatchID:      res.BatchID,
		GeneratedAt:  now,
		State:        res.State,
		SuccessCount: res.SuccessCount,
		ErrorCount:   res.ErrorCount,
		Skipped:      res.Skipped,
		Errors:       make([]ReportEntry, 0, len(res.Errors)),
	}
	for _, e := range res.Errors {
		rep.Errors = append(rep.Errors, ReportEntry{
			No:          e.Index + 1,
			Name:        e.Name,
			CandidateID: e.CandidateID,
			Category:    string(e.Category),
			Stage:       string(e.Stage),
			Code:        string(e.Code),
			TemplateID:  e.TemplateID,
			DecreeID:    e.DecreeID,
			Number:      e.Number,
			Message:     e.Err.Error(),
		})
	}
	return json.MarshalIndent(rep, "", "  ")
}
