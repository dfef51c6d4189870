// internal/models/decree.go
package models

import "time"

const (
	DecreeStatusActive  = "active"
	DecreeStatusRevised = "revised"
	DecreeStatusVoid    = "void"
)

// Decree is the persisted record of one issued document. It is written
// before rendering so its ID can be embedded in the verification QR code.
type Decree struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	Category    Category  `json:"category"`
	OwnerName   string    `json:"ownerName"`
	Number      string    `json:"number"`
	Unit        string    `json:"unit"`
	IssuedAt    time.Time `json:"issuedAt"`
	Status      string    `json:"status"`
	BatchID     string    `json:"batchId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
