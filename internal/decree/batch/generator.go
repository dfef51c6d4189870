// Package batch generates a decree for every candidate of a batch and packs
// the documents into one archive. Items fail independently; only a batch
// with no success at all is a failure.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/common/logger"
	"decree-workers/internal/common/metrics"
	"decree-workers/internal/decree/classify"
	"decree-workers/internal/decree/dates"
	"decree-workers/internal/decree/render"
	"decree-workers/internal/decree/rendercontext"
	"decree-workers/internal/decree/sequence"
	"decree-workers/internal/decree/templates"
	"decree-workers/internal/decree/verify"
	"decree-workers/internal/models"
)

// Linker persists a decree and returns its verification link.
type Linker interface {
	RegisterAndLink(ctx context.Context, req verify.Request) (*verify.Link, error)
}

// Renderer fills a template.
type Renderer interface {
	Render(template []byte, values rendercontext.Context, qr []byte) (*render.Document, error)
}

// Marker flags a candidate as having a generated decree.
type Marker interface {
	MarkGenerated(ctx context.Context, candidateID string) error
}

// Indexer publishes a decree for search.
type Indexer interface {
	Index(ctx context.Context, d models.Decree) error
}

// Request is one batch invocation.
type Request struct {
	BatchID    string // generated when empty
	Candidates []models.Candidate
	Settings   models.Settings
}

// Generator runs batches. It is safe to reuse across batches; each Run owns
// its own template session, cursor and archive.
type Generator struct {
	classifier *classify.Engine
	selector   *templates.Selector
	linker     Linker
	renderer   Renderer
	counter    sequence.Store
	marker     Marker
	indexer    Indexer
	logger     logger.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

type Option func(*Generator)

// WithMarker marks candidates after their document is packed.
func WithMarker(m Marker) Option { return func(g *Generator) { g.marker = m } }

// WithIndexer indexes each generated decree.
func WithIndexer(i Indexer) Option { return func(g *Generator) { g.indexer = i } }

// WithClock fixes the clock used for issue dates and archive timestamps.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

func NewGenerator(
	classifier *classify.Engine,
	selector *templates.Selector,
	linker Linker,
	renderer Renderer,
	counter sequence.Store,
	log logger.Logger,
	opts ...Option,
) *Generator {
	g := &Generator{
		classifier: classifier,
		selector:   selector,
		linker:     linker,
		renderer:   renderer,
		counter:    counter,
		logger:     log,
		tracer:     otel.Tracer("decree-workers/batch"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// run is the state threaded through the fold over candidates.
type run struct {
	req      Request
	issuedAt time.Time
	session  *templates.Session
	cursor   *sequence.Cursor
	archive  *archive
	result   *Result
}

// Run processes the candidates in order. On EmptyFailure it returns the
// result together with a BATCH_EMPTY error and no archive. Cancellation of
// ctx stops the batch between items; documents generated so far are kept.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	started := g.now()
	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, apperrors.NewInputValidationFailedError(err.Error())
	}

	ctx, span := g.tracer.Start(ctx, "decree.batch", trace.WithAttributes(
		attribute.String("batch.id", req.BatchID),
		attribute.Int("batch.size", len(req.Candidates)),
	))
	defer span.End()

	log := g.logger.WithFields(map[string]interface{}{"batchId": req.BatchID})

	start := req.Settings.StartSequence
	if start <= 0 {
		next, err := g.counter.Next(ctx)
		if err != nil {
			span.RecordError(err)
			return nil, apperrors.NewSequenceStoreFailedError(err)
		}
		start = next
	}

	r := &run{
		req:      req,
		issuedAt: g.issueDate(req.Settings),
		session:  g.selector.NewSession(),
		cursor:   sequence.NewCursor(start),
		archive:  newArchive(started),
		result: &Result{
			BatchID:     req.BatchID,
			State:       StateIdle,
			FirstNumber: start,
		},
	}

	log.Info("Decree batch started", map[string]interface{}{
		"candidates":    len(req.Candidates),
		"startSequence": start,
	})

	r.result.State = StateProcessing
	for i, c := range req.Candidates {
		if ctx.Err() != nil {
			r.result.State = StateCancelled
			r.result.Skipped = len(req.Candidates) - i
			break
		}
		g.fold(r, g.process(ctx, r, i, c))
	}

	res, err := g.finalize(ctx, r, log)
	res.Duration = g.now().Sub(started)
	metrics.DecreeBatchDuration.WithLabelValues(string(res.State)).Observe(res.Duration.Seconds())

	span.SetAttributes(
		attribute.String("batch.state", string(res.State)),
		attribute.Int("batch.succeeded", res.SuccessCount),
		attribute.Int("batch.failed", res.ErrorCount),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// outcome is the result of one item: exactly one field is set.
type outcome struct {
	ok  *Success
	err *ItemError
}

func (g *Generator) fold(r *run, o outcome) {
	if o.err != nil {
		r.result.Errors = append(r.result.Errors, o.err)
		r.result.ErrorCount++
		return
	}
	r.result.Successes = append(r.result.Successes, *o.ok)
	r.result.SuccessCount++
}

func (g *Generator) process(ctx context.Context, r *run, i int, c models.Candidate) outcome {
	name := c.DisplayName()
	ctx, span := g.tracer.Start(ctx, "decree.item", trace.WithAttributes(
		attribute.Int("item.index", i),
		attribute.String("candidate.id", c.ID),
	))
	defer span.End()

	verdict := g.classifier.Explain(c)
	cat := verdict.Category
	span.SetAttributes(attribute.String("decree.category", string(cat)))
	if verdict.TenureUnparsed {
		g.logger.Warn("Tenure start unreadable, classified conservatively", map[string]interface{}{
			"batchId":     r.req.BatchID,
			"candidate":   name,
			"tenureStart": fmt.Sprintf("%v", c.TenureStart),
			"errorCode":   string(apperrors.ErrCodeDateParseFailed),
			"category":    string(cat),
		})
	}

	// set once a decree record holds this item's number
	var persisted *models.Decree

	fail := func(stage Stage, templateID string, err error) outcome {
		ie := &ItemError{
			Index:       i,
			Name:        name,
			CandidateID: c.ID,
			Category:    cat,
			Stage:       stage,
			Code:        apperrors.Code(err),
			TemplateID:  templateID,
			Err:         err,
		}
		fields := map[string]interface{}{
			"batchId":    r.req.BatchID,
			"candidate":  name,
			"index":      i,
			"stage":      string(stage),
			"errorCode":  string(ie.Code),
			"templateId": templateID,
			"error":      err.Error(),
		}
		if persisted != nil {
			ie.DecreeID = persisted.ID
			ie.Number = persisted.Number
			fields["decreeId"] = persisted.ID
			fields["decreeNumber"] = persisted.Number
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(ie.Code))
		metrics.DecreeItemsFailed.WithLabelValues(string(ie.Code)).Inc()
		g.logger.Warn("Decree item failed", fields)
		return outcome{err: ie}
	}

	templateID, tpl, err := r.session.Template(ctx, cat)
	if err != nil {
		return fail(StageTemplate, templateID, err)
	}

	number := sequence.Format(r.req.Settings.NumberFormat, r.cursor.Peek(), r.issuedAt)
	unit := c.Unit
	if unit == "" {
		unit = r.req.Settings.DefaultUnit
	}

	link, err := g.linker.RegisterAndLink(ctx, verify.Request{
		Candidate: c,
		Category:  cat,
		Number:    number,
		Unit:      unit,
		IssuedAt:  r.issuedAt,
		BatchID:   r.req.BatchID,
		BaseURL:   r.req.Settings.VerifyBaseURL,
	})
	if link != nil {
		// the record keeps its number even if a later step fails
		r.cursor.Commit()
		persisted = &link.Decree
	}
	if err != nil {
		return fail(StageRegister, templateID, err)
	}

	values := rendercontext.Build(rendercontext.Input{
		Candidate:    c,
		Category:     cat,
		DecreeNumber: number,
		Settings:     r.req.Settings,
		IssuedAt:     r.issuedAt,
		VerifyURL:    link.URL,
	})

	doc, err := g.renderer.Render(tpl, values, link.QR)
	if err != nil {
		return fail(StageRender, templateID, asRenderError("substitute", err))
	}

	file, err := r.archive.add(name, doc.Bytes)
	if err != nil {
		return fail(StagePackage, templateID, asRenderError("package", err))
	}

	metrics.DecreeDocumentsGenerated.WithLabelValues(string(cat)).Inc()

	g.afterSuccess(ctx, r, c, link.Decree)

	return outcome{ok: &Success{
		Index:       i,
		Name:        name,
		CandidateID: c.ID,
		Category:    cat,
		DecreeID:    link.Decree.ID,
		Number:      number,
		File:        file,
	}}
}

// afterSuccess runs the best-effort side effects of a generated decree.
func (g *Generator) afterSuccess(ctx context.Context, r *run, c models.Candidate, d models.Decree) {
	if g.marker != nil {
		if err := g.marker.MarkGenerated(ctx, c.ID); err != nil {
			g.logger.Warn("Could not mark candidate generated", map[string]interface{}{
				"batchId":     r.req.BatchID,
				"candidateId": c.ID,
				"error":       err.Error(),
			})
		}
	}
	if g.indexer != nil {
		if err := g.indexer.Index(ctx, d); err != nil {
			g.logger.Warn("Could not index decree", map[string]interface{}{
				"batchId":  r.req.BatchID,
				"decreeId": d.ID,
				"error":    err.Error(),
			})
		}
	}
}

func (g *Generator) finalize(ctx context.Context, r *run, log logger.Logger) (*Result, error) {
	res := r.result
	cancelled := res.State == StateCancelled
	res.State = StateFinalizing
	res.NextSequence = r.cursor.Start()

	if res.SuccessCount == 0 {
		res.State = StateEmptyFailure
		if r.cursor.Committed() > 0 {
			// persisted records kept their numbers
			g.saveCounter(ctx, r, log)
		}
		log.Error("Decree batch produced no documents", map[string]interface{}{
			"errors":  res.ErrorCount,
			"skipped": res.Skipped,
		})
		return res, apperrors.NewBatchEmptyError(res.ErrorCount)
	}

	res.State = StateCompleted
	if cancelled {
		res.State = StateCancelled
	}

	if res.ErrorCount > 0 || cancelled {
		report, err := buildReport(res, r.archive.now)
		if err == nil {
			err = r.archive.write(ReportName, report)
		}
		if err != nil {
			log.Error("Could not attach error report", map[string]interface{}{"error": err.Error()})
		}
	}

	g.saveCounter(ctx, r, log)

	data, err := r.archive.close()
	if err != nil {
		// documents and decree records exist but cannot be delivered
		return res, apperrors.NewDecreeRenderFailedError("archive", err)
	}
	res.Archive = data

	log.Info("Decree batch finished", map[string]interface{}{
		"state":        string(res.State),
		"succeeded":    res.SuccessCount,
		"failed":       res.ErrorCount,
		"skipped":      res.Skipped,
		"nextSequence": res.NextSequence,
	})
	return res, nil
}

func (g *Generator) saveCounter(ctx context.Context, r *run, log logger.Logger) {
	res := r.result
	res.NextSequence = r.cursor.Start() + r.cursor.Committed()
	// cancellation must not prevent recording the numbers already used
	if err := g.counter.Save(context.WithoutCancel(ctx), res.NextSequence); err != nil {
		log.Error("Could not save decree sequence counter", map[string]interface{}{
			"nextSequence": res.NextSequence,
			"error":        err.Error(),
		})
		res.CounterErr = apperrors.NewSequenceStoreFailedError(err)
	}
}

func (g *Generator) issueDate(s models.Settings) time.Time {
	if t, ok := dates.Parse(s.IssueDate); ok {
		return t
	}
	now := g.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func asRenderError(step string, err error) error {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return err
	}
	return apperrors.NewDecreeRenderFailedError(step, err)
}
