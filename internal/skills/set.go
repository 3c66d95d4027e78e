package skills

import (
	"encoding/json"
	"sort"
	"strings"
)

// Set is a deduplicated collection of canonical lowercase skill names.
type Set map[string]struct{}

// NewSet builds a set from the given names, lowercasing and trimming them.
// Empty names are dropped.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s Set) Add(item string) {
	item = strings.ToLower(strings.TrimSpace(item))
	if item == "" {
		return
	}
	s[item] = struct{}{}
}

func (s Set) Has(item string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(item))]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members present in both sets.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for item := range s {
		if _, ok := other[item]; ok {
			out[item] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are missing from other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for item := range s {
		if _, ok := other[item]; !ok {
			out[item] = struct{}{}
		}
	}
	return out
}

func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for item := range s {
		out[item] = struct{}{}
	}
	for item := range other {
		out[item] = struct{}{}
	}
	return out
}

// SubsetOf reports whether every member of s is also in other.
func (s Set) SubsetOf(other Set) bool {
	for item := range s {
		if _, ok := other[item]; !ok {
			return false
		}
	}
	return true
}

// String joins the sorted members into plain text that normalizes back to the same set.
func (s Set) String() string {
	return strings.Join(s.Sorted(), ", ")
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}
