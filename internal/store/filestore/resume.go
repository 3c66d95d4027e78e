// Package filestore implements the stores on plain files for runs without a database.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/store"
)

// ResumeFile serves a single résumé read from a text file. The ids are not checked.
type ResumeFile struct {
	path      string
	extractor *extract.Extractor
}

func NewResumeFile(path string, extractor *extract.Extractor) *ResumeFile {
	if extractor == nil {
		extractor = extract.New(nil)
	}
	return &ResumeFile{path: path, extractor: extractor}
}

func (r *ResumeFile) GetParsedResume(_ context.Context, _, _ string) (*extract.ParsedDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("resume file %s: %w", r.path, store.ErrNotFound)
		}
		return nil, fmt.Errorf("read resume file: %w", err)
	}
	return r.extractor.Extract(string(data))
}
