// internal/workers/decree/generate-decree-batch/handler.go
package generatedecreebatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"decree-workers/internal/common/aws"
	"decree-workers/internal/common/camunda"
	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/common/logger"
	"decree-workers/internal/common/metrics"
	"decree-workers/internal/common/validation"
	"decree-workers/internal/decree/batch"
)

const (
	TaskType = "generate-decree-batch"
)

var schema = validation.MustCompile(inputSchema)

// Define interfaces for mocking
type BatchRunner interface {
	Run(ctx context.Context, req batch.Request) (*batch.Result, error)
}

type ArchiveUploader interface {
	Upload(ctx context.Context, batchID string, data []byte) (string, error)
}

type BatchNotifier interface {
	NotifyBatch(ctx context.Context, s aws.BatchSummary) error
}

// JobRecorder receives OpenTelemetry job and batch measurements.
type JobRecorder interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	RecordJobProcessed(ctx context.Context, status string)
	RecordJobDuration(ctx context.Context, duration time.Duration, status string)
	RecordBatchItems(ctx context.Context, succeeded, failed int)
}

type Handler struct {
	config     *Config
	runner     BatchRunner
	uploader   ArchiveUploader
	notifier   BatchNotifier
	recorder   JobRecorder
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the worker. uploader and notifier may be nil.
func NewHandler(config *Config, runner BatchRunner, uploader ArchiveUploader, notifier BatchNotifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		runner:     runner,
		uploader:   uploader,
		notifier:   notifier,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

// WithRecorder attaches an OpenTelemetry recorder.
func (h *Handler) WithRecorder(r JobRecorder) *Handler {
	h.recorder = r
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	started := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if h.recorder != nil {
		var span trace.Span
		ctx, span = h.recorder.StartSpan(ctx, "job."+TaskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
		)
		defer span.End()
	}

	output, err := h.handle(ctx, job)
	status := "completed"
	if err != nil {
		status = "failed"
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Code(err))).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
		h.completeJob(client, job, output)
	}

	elapsed := time.Since(started)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	if h.recorder != nil {
		h.recorder.RecordJobProcessed(ctx, status)
		h.recorder.RecordJobDuration(ctx, elapsed, status)
	}
}

func (h *Handler) handle(ctx context.Context, job entities.Job) (*Output, error) {
	if res := schema.ValidateJSON(job.Variables); !res.Valid {
		return nil, apperrors.NewInputValidationFailedError(strings.Join(res.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}

	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.runner.Run(ctx, batch.Request{
		BatchID:    input.BatchID,
		Candidates: input.Candidates,
		Settings:   input.Settings.Merge(h.config.Defaults),
	})
	if res == nil {
		return nil, err
	}

	output := &Output{
		BatchID:      res.BatchID,
		State:        string(res.State),
		SuccessCount: res.SuccessCount,
		ErrorCount:   res.ErrorCount,
		Skipped:      res.Skipped,
		FailedNames:  failedNames(res),
		NextSequence: res.NextSequence,
	}
	if res.CounterErr != nil {
		output.CounterWarning = res.CounterErr.Error()
	}
	if h.recorder != nil {
		h.recorder.RecordBatchItems(ctx, res.SuccessCount, res.ErrorCount)
	}

	if err != nil {
		h.notify(ctx, output)
		return nil, err
	}

	if h.uploader != nil && res.Archive != nil {
		key, err := h.upload(ctx, res.BatchID, res.Archive)
		if err != nil {
			h.notify(ctx, output)
			return nil, err
		}
		output.ArchiveKey = key
	}

	h.notify(ctx, output)

	h.logger.Info("decree batch completed", map[string]interface{}{
		"batchId":    output.BatchID,
		"state":      output.State,
		"succeeded":  output.SuccessCount,
		"failed":     output.ErrorCount,
		"archiveKey": output.ArchiveKey,
	})
	return output, nil
}

// upload retries in process. Decrees are already persisted, so a failure
// after the last attempt is not retryable at job level.
func (h *Handler) upload(ctx context.Context, batchID string, data []byte) (string, error) {
	attempts := h.config.UploadAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
uploads:
	for attempt := 1; attempt <= attempts; attempt++ {
		key, err := h.uploader.Upload(ctx, batchID, data)
		if err == nil {
			return key, nil
		}
		lastErr = err
		h.logger.Warn("archive upload failed", map[string]interface{}{
			"batchId": batchID,
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < attempts {
			select {
			case <-ctx.Done():
				break uploads
			case <-time.After(h.config.UploadBackoff * time.Duration(attempt)):
			}
		}
	}

	stdErr := apperrors.NewArchiveUploadFailedError(lastErr)
	stdErr.Retryable = false
	return "", stdErr
}

func (h *Handler) notify(ctx context.Context, output *Output) {
	if h.notifier == nil {
		return
	}
	err := h.notifier.NotifyBatch(context.WithoutCancel(ctx), aws.BatchSummary{
		BatchID:      output.BatchID,
		State:        output.State,
		SuccessCount: output.SuccessCount,
		ErrorCount:   output.ErrorCount,
		ArchiveKey:   output.ArchiveKey,
		FailedNames:  output.FailedNames,
	})
	if err != nil {
		h.logger.Warn("batch notification failed", map[string]interface{}{
			"batchId": output.BatchID,
			"error":   err.Error(),
		})
	}
}

func failedNames(res *batch.Result) []string {
	if len(res.Errors) == 0 {
		return nil
	}
	names := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		names[i] = e.Name
	}
	return names
}

// completeJob retries transient send failures; a lost completion reruns the batch.
func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = camunda.Retry(context.Background(), h.config.CompleteRetry, "complete-job", func(ctx context.Context) (interface{}, error) {
		return cmd.Send(ctx)
	})
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
