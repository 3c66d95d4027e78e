package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MQasim39/career-dashboard/internal/matching"
)

// ResultsFile keeps match results of every résumé in one JSON file.
type ResultsFile struct {
	mu   sync.Mutex
	path string
}

type resultsDocument struct {
	Matches map[string][]matching.Result `json:"matches"`
}

func NewResultsFile(path string) *ResultsFile {
	return &ResultsFile{path: path}
}

// ReplaceMatches rewrites the file through a temporary file and a rename, so readers
// see either the old or the new results.
func (f *ResultsFile) ReplaceMatches(_ context.Context, userID, resumeID string, results []matching.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if results == nil {
		results = []matching.Result{}
	}
	doc.Matches[resultsKey(userID, resumeID)] = results

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp results file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp results file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}

// ListMatches returns the stored results in the order they were written.
func (f *ResultsFile) ListMatches(_ context.Context, userID, resumeID string) ([]matching.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	results := doc.Matches[resultsKey(userID, resumeID)]
	if results == nil {
		return []matching.Result{}, nil
	}
	return results, nil
}

func (f *ResultsFile) load() (*resultsDocument, error) {
	doc := &resultsDocument{}

	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read results file: %w", err)
	default:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode results file %s: %w", f.path, err)
		}
	}

	if doc.Matches == nil {
		doc.Matches = make(map[string][]matching.Result)
	}
	return doc, nil
}

func resultsKey(userID, resumeID string) string {
	return userID + "/" + resumeID
}
