package jobs

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
// Text without markup is only whitespace-collapsed.
func PlainText(s string) (string, error) {
	if !strings.ContainsAny(s, "<>") {
		return collapseSpaces(s), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	// Block elements would otherwise glue neighbouring words together.
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	return collapseSpaces(doc.Text()), nil
}

// CleanDescriptions rewrites HTML descriptions and requirements of every job as plain text.
func (v *Jobs) CleanDescriptions() error {
	for _, job := range v.Items {
		if job == nil {
			continue
		}
		description, err := PlainText(job.Description)
		if err != nil {
			return fmt.Errorf("job %s description: %w", job.ID, err)
		}
		job.Description = description

		for i, requirement := range job.Requirements {
			if job.Requirements[i], err = PlainText(requirement); err != nil {
				return fmt.Errorf("job %s requirement %d: %w", job.ID, i, err)
			}
		}
	}
	return nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
