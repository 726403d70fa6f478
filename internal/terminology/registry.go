// Package terminology loads and indexes the clinical code sets a measure
// evaluates against.
//
// Code sets are declared in CUE files, loaded and validated once at
// startup, and read-only thereafter. The registry is the only shared
// resource in the engine and is safe for concurrent use by construction:
// nothing mutates it after Load returns.
package terminology

import (
	"fmt"
	"sort"
)

// Role classifies what a code set means to population logic. Sets with
// semantically exclusive roles (numerator vs. exclusion) must not overlap
// in membership; this is validated once at load time so the per-patient
// hot path stays lookup-only.
type Role string

const (
	RoleNumerator Role = "numerator"
	RoleExclusion Role = "exclusion"
	RoleOther     Role = ""
)

// Code is a single (coding-system, code) pair.
type Code struct {
	System string `json:"system"`
	Code   string `json:"code"`
}

// CodeSet is a named, immutable set of codes with a human-readable label.
type CodeSet struct {
	Category string
	Label    string
	Role     Role

	members map[Code]struct{}
}

// Contains reports whether (system, code) is a member of the set.
func (s *CodeSet) Contains(system, code string) bool {
	_, ok := s.members[Code{System: system, Code: code}]
	return ok
}

// Len returns the number of codes in the set.
func (s *CodeSet) Len() int {
	return len(s.members)
}

// Codes returns the members in deterministic (system, code) order.
func (s *CodeSet) Codes() []Code {
	out := make([]Code, 0, len(s.members))
	for c := range s.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].System != out[j].System {
			return out[i].System < out[j].System
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// UnknownCategoryError is returned by Registry.Codes for a category that
// was never registered. This is a configuration error and should be
// treated as fatal at startup, not retried per evaluation.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown terminology category %q", e.Category)
}

// Registry indexes code sets by category. Built once by Load; no
// mutation API exists after that.
type Registry struct {
	sets map[string]*CodeSet
}

// Codes returns the code set registered under category.
func (r *Registry) Codes(category string) (*CodeSet, error) {
	set, ok := r.sets[category]
	if !ok {
		return nil, &UnknownCategoryError{Category: category}
	}
	return set, nil
}

// Categories returns all registered categories in sorted order.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.sets))
	for c := range r.sets {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// newRegistry indexes the given sets and enforces the disjointness
// invariant: no code may appear in both a numerator-role set and an
// exclusion-role set.
func newRegistry(sets []*CodeSet) (*Registry, error) {
	byCategory := make(map[string]*CodeSet, len(sets))
	for _, s := range sets {
		if _, dup := byCategory[s.Category]; dup {
			return nil, &LoadError{
				Code:    ErrCodeDuplicateCategory,
				Message: fmt.Sprintf("category %q declared more than once", s.Category),
			}
		}
		byCategory[s.Category] = s
	}

	for _, num := range sets {
		if num.Role != RoleNumerator {
			continue
		}
		for _, excl := range sets {
			if excl.Role != RoleExclusion {
				continue
			}
			for c := range num.members {
				if _, ok := excl.members[c]; ok {
					return nil, &LoadError{
						Code: ErrCodeOverlap,
						Message: fmt.Sprintf("code %s/%s appears in both numerator set %q and exclusion set %q",
							c.System, c.Code, num.Category, excl.Category),
					}
				}
			}
		}
	}

	return &Registry{sets: byCategory}, nil
}
