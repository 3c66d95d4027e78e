package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MQasim39/career-dashboard/internal/matching"
)

func TestToExcel(t *testing.T) {
	results := []matching.Result{
		{JobID: "j1", Title: "Data Engineer", Company: "Acme", Score: 91.5, MatchedSkills: []string{"python", "sql"}, Source: matching.SourceRemote, Explanation: "Strong"},
		{JobID: "j2", Title: "Analyst", Score: 72, MissingSkills: []string{"tableau"}, Source: matching.SourceLexical},
	}

	path, err := ToExcel(results, "resume-1", filepath.Join(t.TempDir(), "matches"))
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, matchesSheet}, f.GetSheetList())

	rows, err := f.GetRows(matchesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"1", "j1", "Data Engineer", "Acme", "91.5", "python, sql", "", "remote", "Strong"}, rows[1])
	assert.Equal(t, "tableau", rows[2][6])

	matches, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", matches)
}

func TestRow(t *testing.T) {
	row := Row(3, matching.Result{JobID: "x", Score: 70, Source: matching.SourceFallback})

	require.Len(t, row, len(Header))
	assert.Equal(t, 3, row[0])
	assert.Equal(t, "fallback", row[7])
}
