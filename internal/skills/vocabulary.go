// Package skills holds the canonical skill vocabulary and the lookup used by every extractor.
package skills

import (
	"sort"
	"strings"
	"sync"
)

// CommonSkills is the built-in vocabulary.
var CommonSkills = []string{
	"python", "javascript", "typescript", "react", "vue", "angular",
	"node.js", "express", "flask", "django", "fastapi", "aws", "azure",
	"gcp", "docker", "kubernetes", "ci/cd", "git", "sql", "nosql",
	"mongodb", "postgresql", "mysql", "redis", "elasticsearch", "kafka",
	"rabbitmq", "graphql", "rest", "api", "html", "css", "sass", "less",
	"webpack", "babel", "java", "c#", "c++", "go", "rust",
	"swift", "kotlin", "android", "ios", "mobile", "react native", "flutter",
	"machine learning", "ai", "data science", "tensorflow", "pytorch",
	"scikit-learn", "nlp", "computer vision", "statistics", "data analysis",
	"data visualization", "d3.js", "tableau", "power bi", "excel", "word",
	"powerpoint", "project management", "agile", "scrum", "kanban", "jira",
	"confluence", "leadership", "communication", "teamwork", "problem solving",
}

// CommonAliases maps a single spelling variant onto its canonical skill.
var CommonAliases = map[string]string{
	"golang":   "go",
	"postgres": "postgresql",
	"k8s":      "kubernetes",
	"reactjs":  "react",
	"nodejs":   "node.js",
	"vuejs":    "vue",
	"mongo":    "mongodb",
	"sklearn":  "scikit-learn",
	"cicd":     "ci/cd",
	"d3":       "d3.js",
	"powerbi":  "power bi",
	"ml":       "machine learning",
	"restful":  "rest",
}

// Vocabulary is an immutable lookup table of canonical skills.
type Vocabulary struct {
	entries []string
	words   map[string][]string
	aliases map[string]string
}

var defaultVocabulary = sync.OnceValue(func() *Vocabulary {
	return NewVocabulary(CommonSkills, CommonAliases)
})

// Default returns the process-wide built-in vocabulary.
func Default() *Vocabulary {
	return defaultVocabulary()
}

// NewVocabulary builds a vocabulary from canonical entries and single-token aliases.
// Entries are lowercased and deduplicated; aliases pointing at unknown entries are ignored.
func NewVocabulary(entries []string, aliases map[string]string) *Vocabulary {
	v := &Vocabulary{
		words:   make(map[string][]string, len(entries)),
		aliases: make(map[string]string, len(aliases)),
	}

	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if _, ok := v.words[entry]; ok {
			continue
		}
		v.words[entry] = entryWords(entry)
		v.entries = append(v.entries, entry)
	}
	sort.Strings(v.entries)

	for alias, canonical := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if alias == "" || alias == canonical {
			continue
		}
		if _, ok := v.words[canonical]; !ok {
			continue
		}
		v.aliases[alias] = canonical
	}

	return v
}

// Extend returns a new vocabulary with the extra entries and aliases merged in.
func (v *Vocabulary) Extend(entries []string, aliases map[string]string) *Vocabulary {
	merged := make(map[string]string, len(v.aliases)+len(aliases))
	for alias, canonical := range v.aliases {
		merged[alias] = canonical
	}
	for alias, canonical := range aliases {
		merged[alias] = canonical
	}
	return NewVocabulary(append(v.Entries(), entries...), merged)
}

// Entries returns a copy of the canonical entries in lexical order.
func (v *Vocabulary) Entries() []string {
	out := make([]string, len(v.entries))
	copy(out, v.entries)
	return out
}

func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Normalize returns every canonical skill that appears in text. Single-word skills
// need an exact token, multi-word skills need each of their words as a token.
func (v *Vocabulary) Normalize(text string) Set {
	found := make(Set)
	if strings.TrimSpace(text) == "" {
		return found
	}

	tokens := Tokens(text)
	for _, entry := range v.entries {
		if containsAll(tokens, v.words[entry]) {
			found[entry] = struct{}{}
		}
	}

	for token := range tokens {
		if canonical, ok := v.aliases[token]; ok {
			found[canonical] = struct{}{}
		}
	}

	return found
}

// entryWords splits a multi-word entry, dropping stop words the tokenizer would never emit.
func entryWords(entry string) []string {
	fields := strings.Fields(entry)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if !englishStopWords[field] {
			words = append(words, field)
		}
	}
	if len(words) == 0 {
		return fields
	}
	return words
}

func containsAll(tokens map[string]struct{}, words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		if _, ok := tokens[word]; !ok {
			return false
		}
	}
	return true
}
