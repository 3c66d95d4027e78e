// Package matching ranks jobs for a résumé and persists the outcome.
package matching

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MQasim39/career-dashboard/internal/ai"
	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/filtering"
	"github.com/MQasim39/career-dashboard/internal/jobs"
	"github.com/MQasim39/career-dashboard/internal/logger"
	"github.com/MQasim39/career-dashboard/internal/scoring"
	"github.com/MQasim39/career-dashboard/internal/skills"
)

const (
	DefaultThreshold = 70.0
	DefaultWorkers   = 4
)

type Config struct {
	Workers          int      `mapstructure:"workers" validate:"gte=0"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
}

// Deps aggregates the collaborators of the orchestrator. Enhancer is optional;
// the stores are only needed by Run.
type Deps struct {
	Vocabulary *skills.Vocabulary
	Scorer     *scoring.Scorer
	Enhancer   ai.Enhancer
	Resumes    ResumeStore
	Jobs       JobStore
	Results    ResultsStore
	Logger     *zap.Logger
}

// Request is one unit of work for Run.
type Request struct {
	UserID    string
	ResumeID  string
	Filter    jobs.Filter
	Threshold float64
}

type Orchestrator struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if deps.Vocabulary == nil {
		deps.Vocabulary = skills.Default()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.New(scoring.DefaultWeights(), deps.Logger)
	}
	return &Orchestrator{cfg: cfg, deps: deps}
}

// Run loads the résumé and the jobs, matches them and replaces the stored results.
// Nothing is written unless the whole batch was scored.
func (o *Orchestrator) Run(ctx context.Context, req Request) ([]Result, error) {
	if _, err := uuid.Parse(req.ResumeID); err != nil {
		return nil, &InputError{Message: fmt.Sprintf("resume id %q is not a valid uuid", req.ResumeID), Cause: err}
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, &InputError{Message: "user id is required"}
	}
	if o.deps.Resumes == nil || o.deps.Jobs == nil || o.deps.Results == nil {
		return nil, &InputError{Message: "resume, job and results stores are required"}
	}

	log := logger.WithFields(o.deps.Logger, logger.MatchFields(req.UserID, req.ResumeID)...)

	resume, err := o.deps.Resumes.GetParsedResume(ctx, req.ResumeID, req.UserID)
	if err != nil {
		var emptyErr *extract.EmptyInputError
		if errors.As(err, &emptyErr) {
			return nil, &InputError{Message: "resume text is empty", Cause: err}
		}
		return nil, &StoreError{Op: "get parsed resume", Cause: err}
	}

	list, err := o.deps.Jobs.ListJobs(ctx, req.Filter)
	if err != nil {
		return nil, &StoreError{Op: "list jobs", Cause: err}
	}
	log.Info("loaded jobs", zap.Int("count", len(list)))

	results, err := o.Match(ctx, resume, list, req.Threshold)
	if err != nil {
		return nil, err
	}

	if err := o.deps.Results.ReplaceMatches(ctx, req.UserID, req.ResumeID, results); err != nil {
		return nil, &StoreError{Op: "replace matches", Cause: err}
	}
	log.Info("stored matches", zap.Int("count", len(results)))

	return results, nil
}

// Match scores every job against the résumé and returns the results at or above
// threshold, by score descending. Ties keep the input order.
func (o *Orchestrator) Match(ctx context.Context, resume *extract.ParsedDocument, list []*jobs.Job, threshold float64) ([]Result, error) {
	if resume == nil || strings.TrimSpace(resume.FullText) == "" {
		return nil, &InputError{Message: "resume text is empty"}
	}
	if len(list) == 0 {
		return nil, &InputError{Message: "no jobs to match"}
	}
	if math.IsNaN(threshold) || threshold < scoring.MinScore || threshold > scoring.MaxScore {
		return nil, &InputError{Message: fmt.Sprintf("threshold %v is outside [0, 100]", threshold)}
	}

	log := o.deps.Logger

	// Invalid records are dropped before dedupe.
	items := make([]*jobs.Job, 0, len(list))
	for i, job := range list {
		if job == nil {
			log.Warn("skipping nil job record", zap.Int("index", i))
			continue
		}
		if err := job.Validate(); err != nil {
			log.Warn("skipping invalid job", zap.Int("index", i), zap.String("title", job.Title), zap.Error(err))
			continue
		}
		items = append(items, job)
	}

	candidates, err := o.pipeline().RunFilters(ctx, &jobs.Jobs{Items: items})
	if err != nil {
		return nil, fmt.Errorf("filter jobs: %w", err)
	}

	resumeSkills := resume.Skills
	if resumeSkills == nil {
		resumeSkills = o.deps.Vocabulary.Normalize(resume.FullText)
	}

	slots := make([]*Result, candidates.Len())

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i, job := range candidates.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					log.Warn("skipping job after scoring panic", zap.String(logger.FieldJobID, job.ID), zap.Any("panic", r))
				}
			}()
			slots[i] = o.score(ctx, resume, resumeSkills, job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(slots))
	scored := 0
	for _, result := range slots {
		if result == nil {
			continue
		}
		scored++
		if result.Score >= threshold {
			results = append(results, *result)
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})

	log.Info("matching finished",
		zap.Int("jobs", len(list)),
		zap.Int("scored", scored),
		zap.Int("matched", len(results)),
		zap.Float64("threshold", threshold),
	)

	return results, nil
}

func (o *Orchestrator) pipeline() *filtering.Filtering {
	log := o.deps.Logger
	return filtering.New([]filtering.Filter{
		filtering.NewDedupe(log),
		filtering.NewExcludedCompanies(o.cfg.ExcludeCompanies, log),
		filtering.NewExcludeFile(o.cfg.ExcludeFile, log),
	}, log)
}

func (o *Orchestrator) score(ctx context.Context, resume *extract.ParsedDocument, resumeSkills skills.Set, job *jobs.Job) *Result {
	jobSkills := o.deps.Vocabulary.Normalize(job.SkillText())
	common := resumeSkills.Intersect(jobSkills)

	result := &Result{
		JobID:   job.ID,
		Title:   job.Title,
		Company: job.Company,
	}

	if o.deps.Enhancer != nil {
		assessment := o.deps.Enhancer.Enhance(ctx, resume, job)
		if assessment == nil {
			o.deps.Logger.Warn("enhancer returned no assessment, scoring locally", zap.String(logger.FieldJobID, job.ID))
			return o.scoreLocally(result, resume, resumeSkills, jobSkills, job)
		}

		result.Score = scoring.Finalize(assessment.Score)
		result.MatchedSkills = common.Intersect(skills.NewSet(assessment.MatchedSkills...)).Sorted()
		result.MissingSkills = nonNil(assessment.MissingSkills)
		result.Explanation = joinExplanation(assessment.Explanation, assessment.Recommendations)
		result.Source = SourceRemote
		if assessment.Fallback {
			result.Source = SourceFallback
		}
		return result
	}

	return o.scoreLocally(result, resume, resumeSkills, jobSkills, job)
}

func (o *Orchestrator) scoreLocally(result *Result, resume *extract.ParsedDocument, resumeSkills, jobSkills skills.Set, job *jobs.Job) *Result {
	breakdown := o.deps.Scorer.Evaluate(resumeSkills, resume.FullText, jobSkills, job.Description)

	result.Score = breakdown.Combined
	result.MatchedSkills = breakdown.Matched
	result.MissingSkills = breakdown.Missing
	result.Explanation = fmt.Sprintf("Matched %d of %d job skills (%.2f%%); text similarity %.2f%%.",
		len(breakdown.Matched), jobSkills.Len(), breakdown.SkillOverlap, breakdown.TextSimilarity)
	result.Source = SourceLexical

	return result
}

func joinExplanation(explanation, recommendations string) string {
	explanation = strings.TrimSpace(explanation)
	recommendations = strings.TrimSpace(recommendations)
	switch {
	case recommendations == "":
		return explanation
	case explanation == "":
		return "Recommendations: " + recommendations
	default:
		return explanation + "\nRecommendations: " + recommendations
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
