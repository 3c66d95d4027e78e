// Package enhance scores résumé and job pairs with a remote language model,
// falling back to the local skill overlap when the model cannot be used.
package enhance

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/ai"
	"github.com/MQasim39/career-dashboard/internal/cache"
	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/jobs"
	"github.com/MQasim39/career-dashboard/internal/logger"
	"github.com/MQasim39/career-dashboard/internal/ratelimit"
	"github.com/MQasim39/career-dashboard/internal/scoring"
	"github.com/MQasim39/career-dashboard/internal/skills"
	"github.com/MQasim39/career-dashboard/internal/utils"
)

const (
	SystemPrompt = "You are an expert job matching assistant. Analyze the match between a resume and job, providing detailed explanations in JSON format."

	FallbackExplanation    = "Score computed locally from the skill overlap."
	FallbackRecommendation = "Consider highlighting your existing skills that match the job requirements and acquiring skills in the missing areas."

	DefaultMaxTokens    = 2000
	DefaultTemperature  = 0.3
	DefaultTimeout      = 30 * time.Second
	defaultMaxLogLength = 200
	// Résumé text beyond this many runes is cut from the prompt.
	maxPromptTextLength = 6000
)

//go:embed prompt.md
var promptTemplate string

type Config struct {
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	MaxLogLength int
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		Timeout:      DefaultTimeout,
		MaxLogLength: defaultMaxLogLength,
	}
}

// Enhancer implements ai.Enhancer.
type Enhancer struct {
	generator ai.Generator
	vocab     *skills.Vocabulary
	limiter   *ratelimit.Window
	responses *cache.TTL[*ai.Assessment]
	cfg       Config
	logger    *zap.Logger
}

// New creates an Enhancer. A nil limiter or cache disables rate limiting or caching.
func New(generator ai.Generator, vocab *skills.Vocabulary, limiter *ratelimit.Window, responses *cache.TTL[*ai.Assessment], cfg Config, logger *zap.Logger) *Enhancer {
	if vocab == nil {
		vocab = skills.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	return &Enhancer{
		generator: generator,
		vocab:     vocab,
		limiter:   limiter,
		responses: responses,
		cfg:       cfg,
		logger:    logger,
	}
}

// Enhance never fails. Any problem with the remote call or its answer
// yields the local overlap-only assessment with Fallback set.
func (e *Enhancer) Enhance(ctx context.Context, resume *extract.ParsedDocument, job *jobs.Job) *ai.Assessment {
	resumeSkills := resume.Skills
	if resumeSkills == nil {
		resumeSkills = e.vocab.Normalize(resume.FullText)
	}
	jobSkills := e.vocab.Normalize(job.SkillText())

	log := logger.WithJob(e.logger, job.ID)

	prompt, err := buildPrompt(resume, resumeSkills, job)
	if err != nil {
		log.Warn("build enhancement prompt", zap.Error(err))
		return fallback(resumeSkills, jobSkills, "")
	}

	req := ai.Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    e.cfg.MaxTokens,
		Temperature:  e.cfg.Temperature,
		Model:        e.cfg.Model,
	}
	key := requestKey(req)

	if e.responses != nil {
		if cached, ok := e.responses.Get(key); ok {
			log.Debug("enhancement served from cache")
			return cached.Clone()
		}
	}

	if e.limiter != nil {
		if _, err := e.limiter.Wait(ctx); err != nil {
			log.Warn("rate limit wait aborted, using local score", zap.Error(err))
			return fallback(resumeSkills, jobSkills, "")
		}
	}

	log.Debug("enhancement request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.cfg.MaxLogLength)),
	)

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	raw, err := e.generator.Generate(callCtx, req)
	cancel()
	if err != nil {
		log.Warn("remote enhancement failed, using local score", zap.Error(err))
		return fallback(resumeSkills, jobSkills, "")
	}

	log.Debug("enhancement response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.cfg.MaxLogLength)),
	)

	parsed, err := parseResponse(raw)
	if err != nil {
		log.Warn("unusable remote answer, using local score", zap.Error(err))
		return fallback(resumeSkills, jobSkills, raw)
	}

	assessment := e.assess(parsed, resumeSkills, jobSkills, raw)
	if e.responses != nil {
		e.responses.Set(key, assessment.Clone())
	}

	return assessment
}

func (e *Enhancer) assess(parsed *response, resumeSkills, jobSkills skills.Set, raw string) *ai.Assessment {
	local := resumeSkills.Intersect(jobSkills)

	matched := local
	if claimed := e.vocab.Normalize(strings.Join(parsed.MatchingSkills, ", ")); claimed.Len() > 0 {
		matched = local.Intersect(claimed)
	}

	explanation := strings.TrimSpace(parsed.Explanation)
	if alignment := coerceString(parsed.ExperienceAlignment); alignment != "" {
		if explanation != "" {
			explanation += "\n"
		}
		explanation += "Experience: " + alignment
	}

	return &ai.Assessment{
		Score:           scoring.Finalize(parsed.MatchScore),
		MatchedSkills:   matched.Sorted(),
		MissingSkills:   jobSkills.Difference(resumeSkills).Sorted(),
		Explanation:     explanation,
		Recommendations: joinRecommendations(parsed.Recommendations),
		Raw:             raw,
	}
}

func fallback(resumeSkills, jobSkills skills.Set, raw string) *ai.Assessment {
	return &ai.Assessment{
		Score:           scoring.Finalize(scoring.SkillOverlap(resumeSkills, jobSkills)),
		MatchedSkills:   resumeSkills.Intersect(jobSkills).Sorted(),
		MissingSkills:   jobSkills.Difference(resumeSkills).Sorted(),
		Explanation:     FallbackExplanation,
		Recommendations: FallbackRecommendation,
		Raw:             raw,
		Fallback:        true,
	}
}

type resumePayload struct {
	Skills     []string             `json:"skills"`
	Experience []extract.Experience `json:"experience"`
	Education  []extract.Education  `json:"education"`
	Text       string               `json:"text"`
}

type jobPayload struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

func buildPrompt(resume *extract.ParsedDocument, resumeSkills skills.Set, job *jobs.Job) (string, error) {
	resumeJSON, err := json.MarshalIndent(resumePayload{
		Skills:     resumeSkills.Sorted(),
		Experience: resume.Experience,
		Education:  resume.Education,
		Text:       truncateRunes(strings.TrimSpace(resume.FullText), maxPromptTextLength),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(jobPayload{
		Title:        job.Title,
		Company:      job.Company,
		Location:     job.Location,
		Description:  job.Description,
		Requirements: job.Requirements,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_JSON}}", string(resumeJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))
	return prompt, nil
}

func requestKey(req ai.Request) string {
	return cache.Key(
		req.SystemPrompt,
		req.UserPrompt,
		req.Model,
		strconv.Itoa(req.MaxTokens),
		strconv.FormatFloat(req.Temperature, 'f', -1, 64),
	)
}

func joinRecommendations(items []string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return strings.Join(out, "\n")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
