package ai

import (
	"context"
	"slices"

	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/jobs"
)

// Request is a single text generation call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	// Model overrides the generator default when set.
	Model string
}

// Generator produces text for a prompt. Failures are *GenerationError.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Assessment struct {
	Score           float64
	MatchedSkills   []string
	MissingSkills   []string
	Explanation     string
	Recommendations string
	Raw             string
	// Fallback is set when the score was computed locally instead of remotely.
	Fallback bool
}

// Enhancer scores a résumé against a job with a remote model. It never fails:
// when the remote answer is unusable it returns a locally computed assessment.
type Enhancer interface {
	Enhance(ctx context.Context, resume *extract.ParsedDocument, job *jobs.Job) *Assessment
}

// Clone returns a deep copy so cached assessments are never shared.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	out := *a
	out.MatchedSkills = slices.Clone(a.MatchedSkills)
	out.MissingSkills = slices.Clone(a.MissingSkills)
	return &out
}
