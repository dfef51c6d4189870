// internal/workers/decree/generate-decree-batch/models.go
package generatedecreebatch

import "decree-workers/internal/models"

type Input struct {
	BatchID    string             `json:"batchId,omitempty"`
	Candidates []models.Candidate `json:"candidates"`
	Settings   models.Settings    `json:"settings"`
}

type Output struct {
	BatchID      string   `json:"batchId"`
	State        string   `json:"state"`
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	Skipped      int      `json:"skipped,omitempty"`
	ArchiveKey   string   `json:"archiveKey,omitempty"`
	FailedNames  []string `json:"failedNames,omitempty"`
	NextSequence int      `json:"nextSequence"`
	// CounterWarning is set when the running counter could not be stored.
	CounterWarning string `json:"counterWarning,omitempty"`
}

const inputSchema = `{
  "type": "object",
  "required": ["candidates"],
  "properties": {
    "batchId": {"type": "string"},
    "candidates": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "nip": {"type": "string"},
          "education": {"type": "string"},
          "tenureStart": {"type": ["string", "number", "null"]},
          "birthDate": {"type": ["string", "number", "null"]},
          "role": {"type": "string"},
          "status": {"type": "string"},
          "override": {"type": "string"},
          "unit": {"type": "string"},
          "subject": {"type": "string"},
          "birthPlace": {"type": "string"},
          "certified": {"type": "boolean"}
        }
      }
    },
    "settings": {
      "type": "object",
      "properties": {
        "numberFormat": {"type": "string"},
        "startSequence": {"type": "integer", "minimum": 0},
        "issueDate": {"type": "string"},
        "issuePlace": {"type": "string"},
        "chairName": {"type": "string"},
        "secretaryName": {"type": "string"},
        "defaultUnit": {"type": "string"},
        "verifyBaseUrl": {"type": "string"}
      }
    }
  }
}`
