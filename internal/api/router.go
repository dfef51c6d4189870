// Package api serves decree verification and service health over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/common/logger"
	"decree-workers/internal/decree/dates"
	"decree-workers/internal/models"
)

// DecreeReader is the read side of the decree store.
type DecreeReader interface {
	Get(ctx context.Context, id string) (models.Decree, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Decree, error)
}

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

type Handler struct {
	decrees      DecreeReader
	checks       map[string]CheckFunc
	logger       logger.Logger
	checkTimeout time.Duration
}

func NewHandler(decrees DecreeReader, checks map[string]CheckFunc, log logger.Logger) *Handler {
	return &Handler{
		decrees:      decrees,
		checks:       checks,
		logger:       log,
		checkTimeout: 3 * time.Second,
	}
}

// Router mounts every endpoint.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/verify/{id}", h.HandleVerify)
	r.Get("/candidates/{id}/decrees", h.HandleCandidateDecrees)
	return r
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HandleReady runs all checks concurrently and answers 503 if any fails.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]checkResult, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name // per-iteration copies (Go 1.22+ loop semantics)
		check := h.checks[name]
		g.Go(func() error {
			results[i] = checkResult{Name: name, Status: "up"}
			if err := check(ctx); err != nil {
				results[i].Status = "down"
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	for _, res := range results {
		if res.Status != "up" {
			status = http.StatusServiceUnavailable
			h.logger.Warn("readiness check failed", map[string]interface{}{
				"check": res.Name,
				"error": res.Error,
			})
		}
	}
	writeJSON(w, status, map[string]interface{}{"checks": results})
}

// verification is what a scanned QR code shows.
type verification struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	OwnerName     string `json:"ownerName"`
	Category      string `json:"category"`
	CategoryLabel string `json:"categoryLabel"`
	Unit          string `json:"unit,omitempty"`
	IssuedAt      string `json:"issuedAt"`
	IssuedAtText  string `json:"issuedAtText"`
	Status        string `json:"status"`
	Valid         bool   `json:"valid"`
}

func toVerification(d models.Decree) verification {
	return verification{
		ID:            d.ID,
		Number:        d.Number,
		OwnerName:     d.OwnerName,
		Category:      d.Category.String(),
		CategoryLabel: d.Category.Label(),
		Unit:          d.Unit,
		IssuedAt:      d.IssuedAt.Format("2006-01-02"),
		IssuedAtText:  dates.FormatLong(d.IssuedAt),
		Status:        d.Status,
		Valid:         d.Status == models.DecreeStatusActive,
	}
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.decrees.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVerification(d))
}

func (h *Handler) HandleCandidateDecrees(w http.ResponseWriter, r *http.Request) {
	list, err := h.decrees.ListByCandidate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]verification, len(list))
	for i, d := range list {
		out[i] = toVerification(d)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"decrees": out})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.Normalize(err)
	status := http.StatusInternalServerError
	switch stdErr.Code {
	case apperrors.ErrCodeDecreeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeInputValidationFailed:
		status = http.StatusBadRequest
	default:
		h.logger.Error("request failed", map[string]interface{}{"error": err.Error()})
	}
	writeJSON(w, status, map[string]string{
		"code":    string(stdErr.Code),
		"message": stdErr.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
