// Package scoring computes the deterministic relevance score of a résumé against a job.
package scoring

import (
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/skills"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Weights balances the skill overlap against the free text similarity.
type Weights struct {
	Skills float64 `mapstructure:"skills" validate:"gte=0"`
	Text   float64 `mapstructure:"text" validate:"gte=0"`
}

func DefaultWeights() Weights {
	return Weights{Skills: 0.6, Text: 0.4}
}

var ErrZeroWeights = errors.New("at least one scoring weight must be positive")

func (w Weights) Validate() error {
	if err := validator.New().Struct(w); err != nil {
		return err
	}
	if w.Skills == 0 && w.Text == 0 {
		return ErrZeroWeights
	}
	return nil
}

// Breakdown keeps the sub-scores that produced Combined.
type Breakdown struct {
	SkillOverlap   float64
	TextSimilarity float64
	Combined       float64
	Matched        []string
	Missing        []string
}

type Scorer struct {
	weights Weights
	logger  *zap.Logger
}

func New(weights Weights, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{weights: weights, logger: logger}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the combined score in [0, 100] rounded to two decimals.
func (s *Scorer) Score(resumeSkills skills.Set, resumeText string, jobSkills skills.Set, jobText string) float64 {
	return s.Evaluate(resumeSkills, resumeText, jobSkills, jobText).Combined
}

// Evaluate never fails. A text similarity that cannot be computed counts as 0.
func (s *Scorer) Evaluate(resumeSkills skills.Set, resumeText string, jobSkills skills.Set, jobText string) Breakdown {
	overlap := SkillOverlap(resumeSkills, jobSkills)

	text, err := TextSimilarity(resumeText, jobText)
	if err != nil {
		s.logger.Debug("text similarity unavailable, counting as zero", zap.Error(err))
		text = 0
	}

	return Breakdown{
		SkillOverlap:   Finalize(overlap),
		TextSimilarity: Finalize(text),
		Combined:       Finalize(s.weights.Skills*overlap + s.weights.Text*text),
		Matched:        resumeSkills.Intersect(jobSkills).Sorted(),
		Missing:        jobSkills.Difference(resumeSkills).Sorted(),
	}
}

// SkillOverlap is the share of job skills present in the résumé, in percent.
// A job without skills scores 0.
func SkillOverlap(resumeSkills, jobSkills skills.Set) float64 {
	if jobSkills.Len() == 0 {
		return 0
	}
	return float64(resumeSkills.Intersect(jobSkills).Len()) / float64(jobSkills.Len()) * 100
}

// Finalize clamps a score into [0, 100] and rounds it to two decimals.
func Finalize(score float64) float64 {
	if math.IsNaN(score) {
		return MinScore
	}
	score = math.Max(MinScore, math.Min(MaxScore, score))
	return math.Round(score*100) / 100
}
