// internal/workers/decree/generate-decree-batch/handler_test.go
package generatedecreebatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"decree-workers/internal/common/aws"
	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/common/logger"
	"decree-workers/internal/decree/batch"
	"decree-workers/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockRunner struct {
	RunFunc func(ctx context.Context, req batch.Request) (*batch.Result, error)
	got     batch.Request
}

func (m *MockRunner) Run(ctx context.Context, req batch.Request) (*batch.Result, error) {
	m.got = req
	return m.RunFunc(ctx, req)
}

type MockUploader struct {
	UploadFunc func(ctx context.Context, batchID string, data []byte) (string, error)
	calls      int
}

func (m *MockUploader) Upload(ctx context.Context, batchID string, data []byte) (string, error) {
	m.calls++
	return m.UploadFunc(ctx, batchID, data)
}

type MockNotifier struct {
	sent []aws.BatchSummary
	err  error
}

func (m *MockNotifier) NotifyBatch(_ context.Context, s aws.BatchSummary) error {
	m.sent = append(m.sent, s)
	return m.err
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Defaults: models.Settings{
			NumberFormat:  "{NOMOR}/SK/{BL_ROMA}/{TAHUN}",
			IssuePlace:    "Cilacap",
			VerifyBaseURL: "https://sk.example.org",
		},
		UploadAttempts: 3,
	}
}

func completedResult() *batch.Result {
	return &batch.Result{
		BatchID:      "batch-001",
		State:        batch.StateCompleted,
		SuccessCount: 2,
		ErrorCount:   1,
		Archive:      []byte("PK"),
		Errors:       []*batch.ItemError{{Index: 1, Name: "Budi"}},
		NextSequence: 7,
	}
}

func createTestInput() *Input {
	return &Input{
		BatchID: "batch-001",
		Candidates: []models.Candidate{
			{ID: "c1", Name: "Siti"},
			{ID: "c2", Name: "Budi"},
			{ID: "c3", Name: "Ahmad"},
		},
		Settings: models.Settings{IssuePlace: "Purwokerto"},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	runner := &MockRunner{RunFunc: func(context.Context, batch.Request) (*batch.Result, error) {
		return completedResult(), nil
	}}
	uploader := &MockUploader{UploadFunc: func(_ context.Context, id string, _ []byte) (string, error) {
		return "archives/" + id + ".zip", nil
	}}
	notifier := &MockNotifier{}
	h := NewHandler(createTestConfig(), runner, uploader, notifier, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, "batch-001", output.BatchID)
	assert.Equal(t, "Completed", output.State)
	assert.Equal(t, 2, output.SuccessCount)
	assert.Equal(t, []string{"Budi"}, output.FailedNames)
	assert.Equal(t, "archives/batch-001.zip", output.ArchiveKey)
	assert.Equal(t, 7, output.NextSequence)

	// job settings win, config fills the gaps
	assert.Equal(t, "Purwokerto", runner.got.Settings.IssuePlace)
	assert.Equal(t, "{NOMOR}/SK/{BL_ROMA}/{TAHUN}", runner.got.Settings.NumberFormat)
	assert.Len(t, runner.got.Candidates, 3)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "archives/batch-001.zip", notifier.sent[0].ArchiveKey)
}

func TestHandler_Execute_EmptyBatch(t *testing.T) {
	runner := &MockRunner{RunFunc: func(context.Context, batch.Request) (*batch.Result, error) {
		return &batch.Result{BatchID: "b", State: batch.StateEmptyFailure, ErrorCount: 3}, apperrors.NewBatchEmptyError(3)
	}}
	uploader := &MockUploader{UploadFunc: func(context.Context, string, []byte) (string, error) {
		t.Fatal("upload must not be called")
		return "", nil
	}}
	notifier := &MockNotifier{}
	h := NewHandler(createTestConfig(), runner, uploader, notifier, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), createTestInput())
	assert.Nil(t, output)
	assert.Equal(t, apperrors.ErrCodeBatchEmpty, apperrors.Code(err))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "EmptyFailure", notifier.sent[0].State)
}

func TestHandler_Execute_RunnerRejectsInput(t *testing.T) {
	runner := &MockRunner{RunFunc: func(context.Context, batch.Request) (*batch.Result, error) {
		return nil, apperrors.NewInputValidationFailedError("numberFormat: required")
	}}
	notifier := &MockNotifier{}
	h := NewHandler(createTestConfig(), runner, nil, notifier, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), createTestInput())
	assert.Equal(t, apperrors.ErrCodeInputValidationFailed, apperrors.Code(err))
	assert.Empty(t, notifier.sent)
}

func TestHandler_Execute_UploadRetries(t *testing.T) {
	runner := &MockRunner{RunFunc: func(context.Context, batch.Request) (*batch.Result, error) {
		return completedResult(), nil
	}}
	uploader := &MockUploader{}
	uploader.UploadFunc = func(context.Context, string, []byte) (string, error) {
		if uploader.calls < 3 {
			return "", errors.New("slow down")
		}
		return "archives/batch-001.zip", nil
	}
	h := NewHandler(createTestConfig(), runner, uploader, nil, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, 3, uploader.calls)
	assert.Equal(t, "archives/batch-001.zip", output.ArchiveKey)
}

func TestHandler_Execute_UploadFailsNotRetryable(t *testing.T) {
	runner := &MockRunner{RunFunc: func(context.Context, batch.Request) (*batch.Result, error) {
		return completedResult(), nil
	}}
	uploader := &MockUploader{UploadFunc: func(context.Context, string, []byte) (string, error) {
		return "", errors.New("access denied")
	}}
	notifier := &MockNotifier{}
	cfg := createTestConfig()
	cfg.UploadAttempts = 2
	h := NewHandler(cfg, runner, uploader, notifier, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.Equal(t, 2, uploader.calls)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeArchiveUploadFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Len(t, notifier.sent, 1)
}

func TestHandler_Execute_NotifyFailureIgnored(t *testing.T) {
	runner := &MockRunner{RunFunc: func(context.Context, batch.Request) (*batch.Result, error) {
		res := completedResult()
		res.CounterErr = apperrors.NewSequenceStoreFailedError(errors.New("redis down"))
		return res, nil
	}}
	notifier := &MockNotifier{err: errors.New("sns throttled")}
	h := NewHandler(createTestConfig(), runner, nil, notifier, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Empty(t, output.ArchiveKey)
	assert.Contains(t, output.CounterWarning, "redis down")
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name  string
		vars  string
		valid bool
	}{
		{"minimal", `{"candidates":[{"name":"Siti"}]}`, true},
		{"serial tenure", `{"candidates":[{"name":"Siti","tenureStart":43831}]}`, true},
		{"no candidates", `{"settings":{}}`, false},
		{"empty candidates", `{"candidates":[]}`, false},
		{"negative start", `{"candidates":[{"name":"Siti"}],"settings":{"startSequence":-2}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, schema.ValidateJSON(tt.vars).Valid)
		})
	}
}

type fakeRecorder struct {
	succeeded, failed int
}

func (f *fakeRecorder) StartSpan(ctx context.Context, name string, _ ...attribute.KeyValue) (context.Context, trace.Span) {
	return noop.NewTracerProvider().Tracer("test").Start(ctx, name)
}
func (f *fakeRecorder) RecordJobProcessed(context.Context, string) {}
func (f *fakeRecorder) RecordJobDuration(context.Context, time.Duration, string) {}
func (f *fakeRecorder) RecordBatchItems(_ context.Context, succeeded, failed int) {
	f.succeeded += succeeded
	f.failed += failed
}

func TestHandler_Execute_RecordsBatchItems(t *testing.T) {
	runner := &MockRunner{RunFunc: func(context.Context, batch.Request) (*batch.Result, error) {
		return completedResult(), nil
	}}
	rec := &fakeRecorder{}
	h := NewHandler(createTestConfig(), runner, nil, nil, logger.NewNoOpLogger()).WithRecorder(rec)

	_, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, 2, rec.succeeded)
	assert.Equal(t, 1, rec.failed)
}
