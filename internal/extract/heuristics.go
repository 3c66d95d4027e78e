package extract

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// dateWindow is the number of following lines searched for a date.
	dateWindow = 3
	// descriptionWindow caps the lines collected after a job title.
	descriptionWindow = 10
	// nameWindow is the number of leading lines searched for the candidate name.
	nameWindow = 5
)

const (
	month     = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`
	monthYear = `(?:` + month + `\s+)?(?:19|20)\d{2}`
)

var (
	titlePattern   = regexp.MustCompile(`(?i)\b(?:engineer|developer|manager|director|analyst|consultant|specialist|coordinator|associate|assistant|lead|senior|junior)s?\b`)
	companyPattern = regexp.MustCompile(`(?i)\b(?:company|corporation|corp|inc|llc|ltd|plc|gmbh)\b`)
	rangePattern   = regexp.MustCompile(`(?i)\b` + monthYear + `\s*(?:-|–|—|to)\s*(?:` + monthYear + `|present|current|now)\b`)
	yearPattern    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	degreePattern = regexp.MustCompile(`(?i)\b(?:bachelor|master|doctorate|associate)(?:'?s)?\b|\b(?:phd|mba|bsc|msc|bs|ms|ba|ma)\b|\b(?:ph|b|m)\.(?:d|s|a|b\.a)\.`)
	schoolPattern = regexp.MustCompile(`(?i)\b(?:university|college|institute|school|academy)\b`)

	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?\(?\d[\d\s().-]{8,}\d`)
	locationPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?: [A-Z][a-zA-Z]+)*,\s*[A-Z]{2}\b`)
	atPattern       = regexp.MustCompile(`(?i)\s+(?:at|@)\s+`)
)

const fieldCutset = " \t|,-–—•·"

// ExperienceFromLines finds work history entries. Every line carrying a job title
// keyword starts an entry; company, dates and description come from the same line
// or the lines right below it.
func ExperienceFromLines(lines []string) []Experience {
	var out []Experience

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !titlePattern.MatchString(line) {
			continue
		}

		entry := Experience{Title: cleanField(line), Company: UnknownCompany}

		companyLine := -1
		if loc := atPattern.FindStringIndex(line); loc != nil && titlePattern.MatchString(line[:loc[0]]) {
			entry.Title = cleanField(line[:loc[0]])
			if company := cleanField(line[loc[1]:]); company != "" {
				entry.Company = company
				companyLine = i
			}
		}

		if companyLine == -1 {
			switch {
			case companyPattern.MatchString(line):
				entry.Company = companySegment(line)
				companyLine = i
			case i+1 < len(lines) && companyPattern.MatchString(lines[i+1]):
				entry.Company = companySegment(lines[i+1])
				companyLine = i + 1
			}
		}

		entry.Dates = dateRangeNear(lines, i)
		entry.Description = descriptionAfter(lines, i, companyLine)

		out = append(out, entry)
	}

	return out
}

// EducationFromLines finds degree and school entries. A degree line directly
// followed by a school line (or the reverse) is merged into one entry.
func EducationFromLines(lines []string) []Education {
	var out []Education

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		hasDegree := degreePattern.MatchString(line)
		hasSchool := schoolPattern.MatchString(line)
		if !hasDegree && !hasSchool {
			continue
		}

		entry := Education{Degree: UnknownDegree, School: UnknownInstitution}
		if hasDegree {
			entry.Degree = fieldOrLine(line)
		}
		if hasSchool {
			entry.School = fieldOrLine(line)
		}

		last := i
		if hasDegree != hasSchool && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			nextDegree := degreePattern.MatchString(next)
			nextSchool := schoolPattern.MatchString(next)
			switch {
			case hasDegree && nextSchool && !nextDegree:
				entry.School = fieldOrLine(next)
				last = i + 1
			case hasSchool && nextDegree && !nextSchool:
				entry.Degree = fieldOrLine(next)
				last = i + 1
			}
		}

		entry.Dates = dateRangeNear(lines, i)
		if entry.Dates == "" {
			entry.Dates = yearNear(lines, i)
		}

		out = append(out, entry)
		i = last
	}

	return out
}

// PersonalInfoFromLines pulls contact details. The name is taken from the first
// short or all-caps line at the top of the document.
func PersonalInfoFromLines(lines []string) PersonalInfo {
	var info PersonalInfo

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if info.Name == "" && i < nameWindow && looksLikeName(line) {
			info.Name = line
		}
		if info.Email == "" {
			info.Email = emailPattern.FindString(line)
		}
		if info.Phone == "" && !rangePattern.MatchString(line) {
			info.Phone = findPhone(line)
		}
		if info.Location == "" {
			info.Location = locationPattern.FindString(line)
		}
	}

	return info
}

func dateRangeNear(lines []string, start int) string {
	for j := start; j <= start+dateWindow && j < len(lines); j++ {
		if match := rangePattern.FindString(lines[j]); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

func yearNear(lines []string, start int) string {
	for j := start; j <= start+dateWindow && j < len(lines); j++ {
		if match := yearPattern.FindString(lines[j]); match != "" {
			return match
		}
	}
	return ""
}

func descriptionAfter(lines []string, start, skip int) string {
	var parts []string
	for j := start + 1; j <= start+descriptionWindow && j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" || titlePattern.MatchString(next) {
			break
		}
		if j == skip || cleanField(next) == "" {
			continue
		}
		parts = append(parts, next)
	}
	return strings.Join(parts, " ")
}

func companySegment(line string) string {
	for _, segment := range strings.FieldsFunc(line, func(r rune) bool { return r == '|' || r == '•' }) {
		if companyPattern.MatchString(segment) {
			return fieldOrLine(segment)
		}
	}
	return fieldOrLine(line)
}

// cleanField drops date ranges and separator punctuation around a field.
func cleanField(s string) string {
	s = rangePattern.ReplaceAllString(s, "")
	return strings.Trim(strings.TrimSpace(s), fieldCutset)
}

func fieldOrLine(s string) string {
	if cleaned := cleanField(s); cleaned != "" {
		return cleaned
	}
	return strings.TrimSpace(s)
}

func findPhone(line string) string {
	for _, candidate := range phonePattern.FindAllString(line, -1) {
		digits := 0
		for _, r := range candidate {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits >= 10 && digits <= 15 {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

func looksLikeName(line string) bool {
	if strings.ContainsAny(line, "@0123456789:/") {
		return false
	}
	if isUpper(line) {
		return true
	}
	words := strings.Fields(line)
	return len(words) == 2 || len(words) == 3
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
