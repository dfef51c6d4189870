// internal/models/candidate.go
package models

// Candidate is a person record eligible for decree generation. The records
// store owns it; the decree engine only reads it.
type Candidate struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	NIP         string      `json:"nip,omitempty" yaml:"nip"`
	Education   string      `json:"education,omitempty" yaml:"education"`
	TenureStart interface{} `json:"tenureStart,omitempty" yaml:"tenureStart"` // ISO/locale text or spreadsheet serial
	Role        string      `json:"role,omitempty" yaml:"role"`
	Status      string      `json:"status,omitempty" yaml:"status"` // employment status, e.g. "PNS", "Honorer"
	Override    string      `json:"override,omitempty" yaml:"override"`
	Unit        string      `json:"unit,omitempty" yaml:"unit"`
	Subject     string      `json:"subject,omitempty" yaml:"subject"`
	BirthPlace  string      `json:"birthPlace,omitempty" yaml:"birthPlace"`
	BirthDate   interface{} `json:"birthDate,omitempty" yaml:"birthDate"`
	Certified   bool        `json:"certified,omitempty" yaml:"certified"`
}

// DisplayName returns the name used in reports and filenames.
func (c Candidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.ID != "" {
		return c.ID
	}
	return "(tanpa nama)"
}
