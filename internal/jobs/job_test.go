package jobs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleJobs() *Jobs {
	return &Jobs{
		Items: []*Job{
			{ID: "1", Title: "Go Developer", Company: "Acme", Location: "Berlin", URL: "https://a.example/1"},
			{ID: "2", Title: "go  developer ", Company: "ACME", Location: "berlin", URL: "https://b.example/9"},
			{ID: "3", Title: "Data Analyst", Company: "Globex", Location: "Remote"},
			{ID: "4", Title: "Go Developer", Company: "Acme", Location: "Paris"},
		},
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	jobs := sampleJobs()

	dropped := jobs.Dedupe()

	if !reflect.DeepEqual(dropped, []string{"2"}) {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}
	if got := jobs.IDs(); !reflect.DeepEqual(got, []string{"1", "3", "4"}) {
		t.Fatalf("unexpected remaining ids: %v", got)
	}
}

func TestDedupeKeyWithoutPostingFields(t *testing.T) {
	tests := []struct {
		name   string
		items  []*Job
		expect []string
	}{
		{
			name:   "different urls are kept",
			items:  []*Job{{ID: "a", URL: "/a"}, {ID: "b", URL: "/b"}},
			expect: []string{"a", "b"},
		},
		{
			name:   "same url collapses",
			items:  []*Job{{ID: "a", URL: "https://x.example/1"}, {ID: "b", URL: " HTTPS://x.example/1 "}},
			expect: []string{"a"},
		},
		{
			name:   "no url falls back to id",
			items:  []*Job{{ID: "a"}, {ID: "b"}, {ID: "a"}},
			expect: []string{"a", "b"},
		},
		{
			name:   "titled job does not meet a url key",
			items:  []*Job{{ID: "a", Title: "url:/a"}, {ID: "b", URL: "/a"}},
			expect: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := &Jobs{Items: tt.items}
			list.Dedupe()
			if got := list.IDs(); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestExclude(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		targets []string
		dropped []string
		left    []string
	}{
		{
			name:    "by id keeps order",
			field:   JobIDField,
			targets: []string{"3", "1"},
			dropped: []string{"1", "3"},
			left:    []string{"2", "4"},
		},
		{
			name:    "company is case insensitive",
			field:   JobCompanyField,
			targets: []string{" acme"},
			dropped: []string{"1", "2", "4"},
			left:    []string{"3"},
		},
		{
			name:    "no targets",
			field:   JobIDField,
			targets: nil,
			dropped: nil,
			left:    []string{"1", "2", "3", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := sampleJobs()
			dropped := jobs.Exclude(tt.field, tt.targets)
			if !reflect.DeepEqual(dropped, tt.dropped) {
				t.Fatalf("expected dropped %v, got %v", tt.dropped, dropped)
			}
			if got := jobs.IDs(); !reflect.DeepEqual(got, tt.left) {
				t.Fatalf("expected left %v, got %v", tt.left, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (&Job{ID: "x"}).Validate(); err != nil {
		t.Fatalf("expected valid job, got %v", err)
	}
	if err := (&Job{Title: "no id"}).Validate(); err == nil {
		t.Fatal("expected error for job without id")
	}
	var nilJob *Job
	if err := nilJob.Validate(); err == nil {
		t.Fatal("expected error for nil job")
	}
}

func TestSkillText(t *testing.T) {
	job := &Job{Description: "Build APIs", Requirements: []string{"Go", "SQL"}}
	if got := job.SkillText(); got != "Build APIs Go SQL" {
		t.Fatalf("unexpected skill text: %q", got)
	}
	if got := (&Job{Description: "only"}).SkillText(); got != "only" {
		t.Fatalf("unexpected skill text: %q", got)
	}
}

func TestReportByCompany(t *testing.T) {
	report := sampleJobs().ReportByCompany()

	if len(report["Acme"]) != 2 {
		t.Fatalf("expected 2 Acme entries, got %d", len(report["Acme"]))
	}
	if report["Globex"][0]["title"] != "Data Analyst" {
		t.Fatalf("unexpected Globex entry: %v", report["Globex"][0])
	}
}

func TestExcludedFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("missing file should be empty, got %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(excluded.Items))
	}

	jobs := sampleJobs()
	excluded.Append(jobs.ToExcluded())
	excluded.Append(jobs.ToExcluded())
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	loaded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}
	if got := loaded.IDs(); !reflect.DeepEqual(got, []string{"1", "2", "3", "4"}) {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	name, err := sampleJobs().DumpToTmpFile()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	defer os.Remove(name)

	info, err := os.Stat(name)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty dump file, err=%v", err)
	}
}
