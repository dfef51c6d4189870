// internal/workers/decree/generate-decree-batch/config.go
package generatedecreebatch

import (
	"time"

	"decree-workers/internal/common/camunda"
	"decree-workers/internal/models"
)

type Config struct {
	Timeout time.Duration
	// Defaults fill settings the job variables leave empty.
	Defaults models.Settings
	// UploadAttempts bounds in-process archive upload retries. The job is
	// never retried once decrees exist.
	UploadAttempts int
	UploadBackoff  time.Duration
	CompleteRetry  *camunda.RetryConfig
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        5 * time.Minute,
		UploadAttempts: 3,
		UploadBackoff:  time.Second,
		CompleteRetry:  camunda.DefaultRetryConfig,
	}
}
