package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/MQasim39/career-dashboard/internal/jobs"
)

// JobsFile reads job postings from a JSON array on every call.
type JobsFile struct {
	path string
}

func NewJobsFile(path string) *JobsFile {
	return &JobsFile{path: path}
}

func (f *JobsFile) ListJobs(_ context.Context, filter jobs.Filter) ([]*jobs.Job, error) {
	list, err := LoadJobs(f.path)
	if err != nil {
		return nil, err
	}
	return Apply(filter, list), nil
}

// LoadJobs decodes a JSON array of jobs.
func LoadJobs(path string) ([]*jobs.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	var list []*jobs.Job
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode jobs file %s: %w", path, err)
	}
	return list, nil
}

// Apply keeps the jobs matching filter, case-insensitively, in their original order.
func Apply(filter jobs.Filter, list []*jobs.Job) []*jobs.Job {
	out := make([]*jobs.Job, 0, len(list))
	for _, job := range list {
		if job == nil || !matches(filter, job) {
			continue
		}
		out = append(out, job)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

func matches(filter jobs.Filter, job *jobs.Job) bool {
	text := strings.ToLower(job.Title + " " + job.SkillText())
	for _, keyword := range filter.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && !strings.Contains(text, keyword) {
			return false
		}
	}
	if !containsFold(job.Location, filter.Location) {
		return false
	}
	return containsFold(job.Company, filter.Company)
}

func containsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	return substr == "" || strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
