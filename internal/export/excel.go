// Package export writes match results into spreadsheets.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MQasim39/career-dashboard/internal/matching"
)

const (
	summarySheet = "Summary"
	matchesSheet = "Matches"
)

// Header of the matches sheet.
var Header = []string{"Rank", "Job ID", "Title", "Company", "Score", "Matched Skills", "Missing Skills", "Source", "Explanation"}

// ToExcel writes results in their given order. A missing .xlsx extension is added;
// the written path is returned.
func ToExcel(results []matching.Result, resumeID, outputPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(matchesSheet); err != nil {
		return "", err
	}

	if err := writeSummary(f, results, resumeID); err != nil {
		return "", fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeMatches(f, results); err != nil {
		return "", fmt.Errorf("write matches sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save spreadsheet: %w", err)
	}
	return outputPath, nil
}

func writeSummary(f *excelize.File, results []matching.Result, resumeID string) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		return err
	}

	rows := [][]any{
		{"Resume", resumeID},
		{"Generated", time.Now().Format(time.RFC3339)},
		{"Matches", len(results)},
	}
	if len(results) > 0 {
		var total float64
		for _, r := range results {
			total += r.Score
		}
		rows = append(rows,
			[]any{"Best score", results[0].Score},
			[]any{"Average score", fmt.Sprintf("%.2f", total/float64(len(results)))},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeMatches(f *excelize.File, results []matching.Result) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(matchesSheet, "A1", &Header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(matchesSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(i+1, r)
		if err := f.SetSheetRow(matchesSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(matchesSheet, "C", "D", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(matchesSheet, "F", "G", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(matchesSheet, "I", "I", 80); err != nil {
		return err
	}

	return f.SetPanes(matchesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Row is the spreadsheet row of one result.
func Row(rank int, r matching.Result) []any {
	return []any{
		rank,
		r.JobID,
		r.Title,
		r.Company,
		r.Score,
		strings.Join(r.MatchedSkills, ", "),
		strings.Join(r.MissingSkills, ", "),
		string(r.Source),
		r.Explanation,
	}
}
