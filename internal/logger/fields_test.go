package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name   string
		fields []zap.Field
		want   map[string]string
	}{
		{
			name:   "common fields",
			fields: CommonFields("  gemini  ", "gemini-2.5-pro"),
			want:   map[string]string{FieldProvider: "gemini", FieldModel: "gemini-2.5-pro"},
		},
		{
			name:   "common fields without model",
			fields: CommonFields("openrouter", ""),
			want:   map[string]string{FieldProvider: "openrouter"},
		},
		{
			name:   "match fields",
			fields: MatchFields("u-1", "0b7e2c7e-4f7a-4d7c-9a51-3f0f3b1f8c11"),
			want:   map[string]string{FieldUserID: "u-1", FieldResumeID: "0b7e2c7e-4f7a-4d7c-9a51-3f0f3b1f8c11"},
		},
		{
			name:   "empty values",
			fields: MatchFields("", " "),
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.fields) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d", len(tt.want), len(tt.fields))
			}
			for _, field := range tt.fields {
				if tt.want[field.Key] != field.String {
					t.Fatalf("field %s: expected %q, got %q", field.Key, tt.want[field.Key], field.String)
				}
			}
		})
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	WithFields(log, zap.String("foo", "bar")).Info("test log")
	WithCommonFields(log, "gemini", "model-x").Info("ai log")
	WithJob(log, "job-7").Info("job log")

	entries := observed.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if got := entries[0].ContextMap()["foo"]; got != "bar" {
		t.Fatalf("expected field to be bar, got %q", got)
	}
	if got := entries[1].ContextMap()[FieldModel]; got != "model-x" {
		t.Fatalf("expected model field to be model-x, got %q", got)
	}
	if got := entries[2].ContextMap()[FieldJobID]; got != "job-7" {
		t.Fatalf("expected job field to be job-7, got %q", got)
	}

	for _, fallback := range []*zap.Logger{
		WithFields(nil, zap.String("baz", "qux")),
		WithCommonFields(nil, "gemini", "model-x"),
		WithJob(nil, ""),
	} {
		if fallback == nil {
			t.Fatalf("expected fallback logger when nil provided")
		}
		fallback.Info("another log")
	}
}
