package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MQasim39/career-dashboard/internal/skills"
)

func TestSkillOverlap(t *testing.T) {
	tests := []struct {
		name   string
		resume skills.Set
		job    skills.Set
		want   float64
	}{
		{name: "job without skills", resume: skills.NewSet("python"), job: skills.NewSet(), want: 0},
		{name: "no common skills", resume: skills.NewSet("java"), job: skills.NewSet("python", "aws"), want: 0},
		{name: "all job skills covered", resume: skills.NewSet("python", "sql", "go"), job: skills.NewSet("python", "sql"), want: 100},
		{name: "half covered", resume: skills.NewSet("python"), job: skills.NewSet("python", "aws"), want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SkillOverlap(tt.resume, tt.job), 1e-9)
		})
	}
}

func TestTextSimilarity(t *testing.T) {
	got, err := TextSimilarity("Python SQL", "python sql")
	require.NoError(t, err)
	assert.InDelta(t, 100, got, 1e-6)

	got, err = TextSimilarity("java developer", "python engineer")
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = TextSimilarity("Überprüfung von Datenbanken", "Datenbanken Überprüfung")
	require.NoError(t, err)
	assert.Greater(t, got, 50.0)
	assert.LessOrEqual(t, got, 100.0+1e-9)

	got, err = TextSimilarity("", "python")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = TextSimilarity("a b", "c")
	require.ErrorIs(t, err, errEmptyVocabulary)
}

func TestTextSimilarityIsReproducible(t *testing.T) {
	a := "Senior backend engineer building Go services, Postgres schemas, Kafka consumers and gRPC APIs for payments"
	b := "Backend developer: Go, gRPC, Kafka, Postgres; payments experience, API design, schema migrations, on call"

	want, err := TextSimilarity(a, b)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		got, err := TextSimilarity(a, b)
		require.NoError(t, err)
		require.Equal(t, math.Float64bits(want), math.Float64bits(got), "run %d", i)
	}
}

func TestScoreWorkedExamples(t *testing.T) {
	scorer := New(DefaultWeights(), nil)

	strong := scorer.Evaluate(
		skills.NewSet("python", "sql"), "Python and SQL developer",
		skills.NewSet("python", "sql"), "Looking for Python and SQL",
	)
	assert.Equal(t, 100.0, strong.SkillOverlap)
	assert.GreaterOrEqual(t, strong.Combined, 60.0)
	assert.LessOrEqual(t, strong.Combined, 100.0)
	assert.Equal(t, []string{"python", "sql"}, strong.Matched)
	assert.Empty(t, strong.Missing)

	weak := scorer.Evaluate(
		skills.NewSet("java"), "Java developer",
		skills.NewSet("python", "aws"), "Python AWS engineer",
	)
	assert.Zero(t, weak.Combined)
	assert.Empty(t, weak.Matched)
	assert.Equal(t, []string{"aws", "python"}, weak.Missing)
}

func TestScoreBounds(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	scorer := New(DefaultWeights(), zap.New(core))

	inputs := []struct {
		resume string
		job    string
	}{
		{"", ""},
		{"x", "y"},
		{"日本語 テキスト", "日本語"},
		{"python python python", "python"},
	}

	for _, in := range inputs {
		got := scorer.Score(skills.NewSet(), in.resume, skills.NewSet(), in.job)
		assert.GreaterOrEqual(t, got, 0.0, "inputs %q %q", in.resume, in.job)
		assert.LessOrEqual(t, got, 100.0, "inputs %q %q", in.resume, in.job)
	}

	assert.Equal(t, 2, logs.FilterMessage("text similarity unavailable, counting as zero").Len())
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: math.NaN(), want: 0},
		{in: -5, want: 0},
		{in: 150, want: 100},
		{in: 66.6666, want: 66.67},
		{in: 42, want: 42},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Finalize(tt.in))
	}
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	require.Error(t, Weights{Skills: -1, Text: 1}.Validate())
	require.ErrorIs(t, Weights{}.Validate(), ErrZeroWeights)
}
