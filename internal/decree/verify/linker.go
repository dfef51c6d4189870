// Package verify registers decrees and produces the QR code that links a
// printed document back to its record.
package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/models"
)

// DefaultQRSize is the QR image edge in pixels.
const DefaultQRSize = 256

// Recorder persists decree records.
type Recorder interface {
	Create(ctx context.Context, d models.Decree) (models.Decree, error)
}

// Link is the outcome of registering one decree.
type Link struct {
	Decree models.Decree
	URL    string
	QR     []byte // PNG
}

// Linker persists a decree first and only then derives its verification
// URL and QR image, so every QR in circulation resolves to a record.
type Linker struct {
	recorder Recorder
	baseURL  string
	qrSize   int
}

func NewLinker(recorder Recorder, baseURL string, qrSize int) *Linker {
	if qrSize <= 0 {
		qrSize = DefaultQRSize
	}
	return &Linker{recorder: recorder, baseURL: baseURL, qrSize: qrSize}
}

// Request describes the decree to register.
type Request struct {
	Candidate models.Candidate
	Category  models.Category
	Number    string
	Unit      string
	IssuedAt  time.Time
	BatchID   string
	BaseURL   string // overrides the linker's base URL when set
}

// RegisterAndLink writes the record and returns its link. A persistence
// failure yields DECREE_PERSIST_FAILED and no link. When the QR code cannot
// be encoded the link is returned without QR alongside the error, since the
// record already exists.
func (l *Linker) RegisterAndLink(ctx context.Context, req Request) (*Link, error) {
	rec, err := l.recorder.Create(ctx, models.Decree{
		CandidateID: req.Candidate.ID,
		Category:    req.Category,
		OwnerName:   req.Candidate.DisplayName(),
		Number:      req.Number,
		Unit:        req.Unit,
		IssuedAt:    req.IssuedAt,
		Status:      models.DecreeStatusActive,
		BatchID:     req.BatchID,
	})
	if err != nil {
		return nil, apperrors.NewDecreePersistFailedError(err)
	}

	base := req.BaseURL
	if base == "" {
		base = l.baseURL
	}
	url := URL(base, rec.ID)

	png, err := qrcode.Encode(url, qrcode.Medium, l.qrSize)
	if err != nil {
		return &Link{Decree: rec, URL: url}, apperrors.NewDecreeRenderFailedError("qr", err)
	}

	return &Link{Decree: rec, URL: url, QR: png}, nil
}

// URL joins the verification base and a decree id.
func URL(base, id string) string {
	return fmt.Sprintf("%s/verify/%s", strings.TrimRight(base, "/"), id)
}
