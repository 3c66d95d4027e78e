package matching

import (
	"context"

	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/jobs"
)

type Source string

const (
	SourceLexical  Source = "lexical"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Result is the match of one job. It only exists for scores at or above the threshold.
type Result struct {
	JobID         string   `json:"job_id"`
	Title         string   `json:"title,omitempty"`
	Company       string   `json:"company,omitempty"`
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Explanation   string   `json:"explanation"`
	Source        Source   `json:"source"`
}

type ResumeStore interface {
	// GetParsedResume fails with store.ErrNotFound when the résumé does not exist for the user.
	GetParsedResume(ctx context.Context, resumeID, userID string) (*extract.ParsedDocument, error)
}

type JobStore interface {
	ListJobs(ctx context.Context, filter jobs.Filter) ([]*jobs.Job, error)
}

type ResultsStore interface {
	// ReplaceMatches atomically swaps every stored result of the résumé for results.
	ReplaceMatches(ctx context.Context, userID, resumeID string, results []Result) error
}
