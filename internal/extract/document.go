// Package extract turns plain résumé text into a structured document.
package extract

import (
	"errors"
	"strings"

	"github.com/MQasim39/career-dashboard/internal/skills"
)

const (
	UnknownCompany     = "Unknown Company"
	UnknownDegree      = "Unknown Degree"
	UnknownInstitution = "Unknown Institution"
)

// ErrEmptyInput is matched by EmptyInputError through errors.Is.
var ErrEmptyInput = errors.New("input text is empty")

// EmptyInputError is returned when there is no text to extract from.
type EmptyInputError struct {
	Message string
}

func (e *EmptyInputError) Error() string {
	if e.Message != "" {
		return "empty input: " + e.Message
	}
	return "empty input"
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}

// ParsedDocument is the structured form of a résumé. It is not modified after Extract returns it.
type ParsedDocument struct {
	FullText     string       `json:"full_text"`
	Skills       skills.Set   `json:"skills"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	PersonalInfo PersonalInfo `json:"personal_info"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Dates       string `json:"dates"`
	Description string `json:"description"`
}

type Education struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Dates  string `json:"dates"`
}

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// Extractor derives a ParsedDocument from raw text using a fixed vocabulary.
type Extractor struct {
	vocab *skills.Vocabulary
}

// New creates an Extractor. A nil vocabulary falls back to skills.Default.
func New(vocab *skills.Vocabulary) *Extractor {
	if vocab == nil {
		vocab = skills.Default()
	}
	return &Extractor{vocab: vocab}
}

// Extract parses raw text. It fails only when the text is empty or whitespace.
func (e *Extractor) Extract(raw string) (*ParsedDocument, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &EmptyInputError{Message: "résumé text has no content"}
	}

	lines := SplitLines(raw)

	return &ParsedDocument{
		FullText:     raw,
		Skills:       e.vocab.Normalize(raw),
		Experience:   ExperienceFromLines(lines),
		Education:    EducationFromLines(lines),
		PersonalInfo: PersonalInfoFromLines(lines),
	}, nil
}

// SplitLines splits text on any newline convention.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
