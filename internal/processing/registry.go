package processing

import (
	"context"
	"sort"
	"strings"

	"casedocs-backend/internal/doctypes"
)

// ErrorCategoryCode marks a classification that could not be completed.
const ErrorCategoryCode = -1

// LabelInfo is one entry in the label registry.
type LabelInfo struct {
	Label        string
	CategoryCode int
	DisplayName  string
	DocTypeID    string
}

// Registry maps classifier labels to category metadata. It is built once at
// startup and never mutated afterwards, so reads need no locking.
type Registry struct {
	entries    map[string]LabelInfo
	candidates []string
}

// NewRegistry builds a registry from document type descriptors. The label
// key for a descriptor is its display name upper-snake-cased. OTHER and
// ERROR fallback entries are always present.
func NewRegistry(types []doctypes.DocType) *Registry {
	entries := make(map[string]LabelInfo, len(types)+2)
	for _, dt := range types {
		label := labelKey(dt.DisplayName)
		entries[label] = LabelInfo{
			Label:        label,
			CategoryCode: dt.CategoryCode,
			DisplayName:  dt.DisplayName,
			DocTypeID:    dt.ID,
		}
	}
	if _, ok := entries["OTHER"]; !ok {
		entries["OTHER"] = LabelInfo{Label: "OTHER", CategoryCode: 0, DisplayName: "Other"}
	}
	entries["ERROR"] = LabelInfo{Label: "ERROR", CategoryCode: ErrorCategoryCode, DisplayName: "Error"}

	// Candidate labels offered to the classifier; ERROR is internal only.
	candidates := make([]string, 0, len(entries)-1)
	for label := range entries {
		if label == "ERROR" {
			continue
		}
		candidates = append(candidates, label)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := entries[candidates[i]], entries[candidates[j]]
		if a.CategoryCode != b.CategoryCode {
			return a.CategoryCode < b.CategoryCode
		}
		return a.Label < b.Label
	})

	return &Registry{entries: entries, candidates: candidates}
}

// BuildRegistry loads all descriptors and builds the registry.
func BuildRegistry(ctx context.Context, repo doctypes.Repo) (*Registry, error) {
	types, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewRegistry(types), nil
}

// CandidateLabels returns the labels the classifier may choose among.
func (r *Registry) CandidateLabels() []string {
	out := make([]string, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Lookup resolves a predicted label, falling back to the ERROR entry for
// anything the registry does not know.
func (r *Registry) Lookup(label string) LabelInfo {
	if info, ok := r.entries[labelKey(label)]; ok {
		return info
	}
	return r.entries["ERROR"]
}

// ErrorEntry returns the fallback entry for failed classifications.
func (r *Registry) ErrorEntry() LabelInfo {
	return r.entries["ERROR"]
}

func labelKey(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}
