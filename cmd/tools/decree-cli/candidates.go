package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"decree-workers/internal/models"
)

// candidateFile is a batch on disk: either a bare list of candidates or a
// document with settings and candidates. JSON input parses as YAML.
type candidateFile struct {
	Settings   models.Settings    `yaml:"settings"`
	Candidates []models.Candidate `yaml:"candidates"`
}

func readCandidates(path string) (*candidateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc candidateFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Candidates) > 0 {
		return &doc, nil
	}

	var list []models.Candidate
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%s: expected a candidate list or a document with candidates: %w", path, err)
	}
	return &candidateFile{Candidates: list}, nil
}
