// Package templates maps decree categories to template documents and loads
// them from local disk or S3.
package templates

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/models"
	"decree-workers/pkg/registry"
)

var defaultIDs = map[models.Category]string{
	models.CategoryTendik:      "sk_tendik",
	models.CategoryGTT:         "sk_gtt",
	models.CategoryGTY:         "sk_gty",
	models.CategoryKamadPNS:    "sk_kamad_pns",
	models.CategoryKamadNonPNS: "sk_kamad_nonpns",
	models.CategoryKamadPLT:    "sk_kamad_plt",
}

// DefaultID returns the built-in template id for a category.
func DefaultID(cat models.Category) string { return defaultIDs[cat] }

// Selector resolves categories to template ids and fetches their documents.
type Selector struct {
	ids    map[models.Category]string
	assets map[string]string
	source Source
}

type Option func(*Selector)

// WithRegistry uses the active registry entry of each category, and its asset key.
func WithRegistry(reg *registry.TemplateRegistry) Option {
	return func(s *Selector) {
		if reg == nil {
			return
		}
		for _, cat := range models.Categories {
			if t, ok := reg.ForCategory(string(cat)); ok {
				s.ids[cat] = t.ID
				s.assets[t.ID] = t.Asset()
			}
		}
	}
}

// WithTemplateIDs overrides ids per category. Keys match category names
// case-insensitively; unknown keys are ignored.
func WithTemplateIDs(ids map[string]string) Option {
	return func(s *Selector) {
		for key, id := range ids {
			if id == "" {
				continue
			}
			for _, cat := range models.Categories {
				if strings.EqualFold(key, string(cat)) {
					s.ids[cat] = id
				}
			}
		}
	}
}

func NewSelector(source Source, opts ...Option) *Selector {
	s := &Selector{
		ids:    make(map[models.Category]string, len(defaultIDs)),
		assets: make(map[string]string),
		source: source,
	}
	for cat, id := range defaultIDs {
		s.ids[cat] = id
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the template id for cat. It never fails; whether the
// asset exists is only known at Fetch time.
func (s *Selector) Resolve(cat models.Category) string {
	if id, ok := s.ids[cat]; ok {
		return id
	}
	return "sk_" + strings.ToLower(string(cat))
}

// AssetKey is the storage key of a template id.
func (s *Selector) AssetKey(id string) string {
	if key, ok := s.assets[id]; ok {
		return key
	}
	return id + ".docx"
}

// Fetch loads the document for id. Any failure, including an empty asset,
// is a TEMPLATE_NOT_FOUND error naming the id.
func (s *Selector) Fetch(ctx context.Context, id string) ([]byte, error) {
	data, err := s.source.Fetch(ctx, s.AssetKey(id))
	if err != nil {
		return nil, apperrors.NewTemplateNotFoundError(id, err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewTemplateNotFoundError(id, ErrNotFound)
	}
	return data, nil
}

// NewSession starts a batch-scoped cache over the selector.
func (s *Selector) NewSession() *Session {
	return &Session{
		selector: s,
		entries:  make(map[string]sessionEntry),
	}
}

type sessionEntry struct {
	data []byte
	err  error
}

// Session fetches each template id at most once per batch. Misses are
// cached too, so a batch does not retry a template it already failed to load.
type Session struct {
	selector *Selector

	mu      sync.Mutex
	entries map[string]sessionEntry
	fetches int
}

// Template resolves cat and returns the id and document.
func (s *Session) Template(ctx context.Context, cat models.Category) (string, []byte, error) {
	id := s.selector.Resolve(cat)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		return id, e.data, e.err
	}
	data, err := s.selector.Fetch(ctx, id)
	s.fetches++
	if err == nil {
		if cerr := checkDocument(data); cerr != nil {
			data, err = nil, apperrors.NewTemplateNotFoundError(id, cerr)
		}
	}
	s.entries[id] = sessionEntry{data: data, err: err}
	return id, data, err
}

// Fetches is the number of source round trips made so far.
func (s *Session) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// Missing lists template ids that failed to load in this session.
func (s *Session) Missing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id, e := range s.entries {
		if e.err != nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// checkDocument rejects templates that cannot be rendered, so an item fails
// before its decree is persisted and numbered.
func checkDocument(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("not a DOCX package: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open word/document.xml: %w", err)
		}
		defer rc.Close()
		if _, err := io.Copy(io.Discard, rc); err != nil {
			return fmt.Errorf("read word/document.xml: %w", err)
		}
		return nil
	}
	return fmt.Errorf("not a DOCX package: word/document.xml missing")
}
