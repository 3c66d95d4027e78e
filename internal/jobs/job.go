// Package jobs holds the job posting records matched against résumés.
package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	JobIDField      = "ID"
	JobCompanyField = "Company"
	JobURLField     = "URL"
)

var validate = validator.New()

// Job is a scraped job posting. It is read-only input to the matcher.
type Job struct {
	ID           string   `json:"id" validate:"required"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	URL          string   `json:"url,omitempty"`
}

type Jobs struct {
	Items []*Job
}

// Filter narrows the jobs returned by a job store.
type Filter struct {
	Keywords []string `mapstructure:"keywords"`
	Location string   `mapstructure:"location"`
	Company  string   `mapstructure:"company"`
	Limit    int      `mapstructure:"limit" validate:"gte=0"`
}

func (j *Job) Validate() error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}
	return validate.Struct(j)
}

// SkillText is the text job skills are derived from.
func (j *Job) SkillText() string {
	if len(j.Requirements) == 0 {
		return j.Description
	}
	return j.Description + " " + strings.Join(j.Requirements, " ")
}

// DedupeKey identifies the same posting scraped from different sources. Records
// without title, company and location fall back to their url, then their id.
func (j *Job) DedupeKey() string {
	title, company, location := normalizeKeyPart(j.Title), normalizeKeyPart(j.Company), normalizeKeyPart(j.Location)
	if title == "" && company == "" && location == "" {
		if url := strings.ToLower(strings.TrimSpace(j.URL)); url != "" {
			return "url:" + url
		}
		return "id:" + j.ID
	}
	return title + "|" + company + "|" + location
}

func (j *Job) GetStringField(name string) string {
	switch name {
	case JobIDField:
		return j.ID
	case JobCompanyField:
		return j.Company
	case JobURLField:
		return j.URL
	default:
		return ""
	}
}

func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (v *Jobs) Len() int {
	return len(v.Items)
}

func (v *Jobs) FindByID(id string) *Job {
	for _, job := range v.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (v *Jobs) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, job := range v.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// Exclude removes jobs whose field matches one of targets and returns their ids.
// Company names compare case-insensitively. Order of the remaining jobs is kept.
func (v *Jobs) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[fieldKey(name, target)] = struct{}{}
	}

	var excluded []string
	kept := v.Items[:0]
	for _, job := range v.Items {
		if _, ok := set[fieldKey(name, job.GetStringField(name))]; ok {
			excluded = append(excluded, job.ID)
			continue
		}
		kept = append(kept, job)
	}
	clear(v.Items[len(kept):])
	v.Items = kept

	return excluded
}

// Dedupe drops later jobs sharing a DedupeKey with an earlier one and returns
// the dropped ids. The first occurrence wins.
func (v *Jobs) Dedupe() []string {
	seen := make(map[string]struct{}, len(v.Items))

	var dropped []string
	kept := v.Items[:0]
	for _, job := range v.Items {
		key := job.DedupeKey()
		if _, ok := seen[key]; ok {
			dropped = append(dropped, job.ID)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, job)
	}
	clear(v.Items[len(kept):])
	v.Items = kept

	return dropped
}

// ReportByCompany groups jobs by company for display.
func (v *Jobs) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range v.Items {
		key := job.Company
		if strings.TrimSpace(key) == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"id":       job.ID,
			"title":    job.Title,
			"location": job.Location,
			"url":      job.URL,
		})
	}
	return report
}

func (v *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func fieldKey(name, value string) string {
	if name == JobCompanyField {
		return normalizeKeyPart(value)
	}
	return strings.TrimSpace(value)
}
