// internal/models/settings.go
package models

// Settings is the global configuration supplied with every batch.
type Settings struct {
	NumberFormat  string `json:"numberFormat" yaml:"numberFormat" mapstructure:"number_format" validate:"required"`
	StartSequence int    `json:"startSequence,omitempty" yaml:"startSequence" mapstructure:"start_sequence" validate:"gte=0"`
	IssueDate     string `json:"issueDate,omitempty" yaml:"issueDate" mapstructure:"issue_date" validate:"omitempty,calendardate"`
	IssuePlace    string `json:"issuePlace,omitempty" yaml:"issuePlace" mapstructure:"issue_place"`
	ChairName     string `json:"chairName,omitempty" yaml:"chairName" mapstructure:"chair_name"`
	SecretaryName string `json:"secretaryName,omitempty" yaml:"secretaryName" mapstructure:"secretary_name"`
	DefaultUnit   string `json:"defaultUnit,omitempty" yaml:"defaultUnit" mapstructure:"default_unit"`
	VerifyBaseURL string `json:"verifyBaseUrl,omitempty" yaml:"verifyBaseUrl" mapstructure:"verify_base_url" validate:"omitempty,url"`
}

// Merge fills empty fields of s from defaults.
func (s Settings) Merge(defaults Settings) Settings {
	out := s
	if out.NumberFormat == "" {
		out.NumberFormat = defaults.NumberFormat
	}
	if out.StartSequence == 0 {
		out.StartSequence = defaults.StartSequence
	}
	if out.IssueDate == "" {
		out.IssueDate = defaults.IssueDate
	}
	if out.IssuePlace == "" {
		out.IssuePlace = defaults.IssuePlace
	}
	if out.ChairName == "" {
		out.ChairName = defaults.ChairName
	}
	if out.SecretaryName == "" {
		out.SecretaryName = defaults.SecretaryName
	}
	if out.DefaultUnit == "" {
		out.DefaultUnit = defaults.DefaultUnit
	}
	if out.VerifyBaseURL == "" {
		out.VerifyBaseURL = defaults.VerifyBaseURL
	}
	return out
}
