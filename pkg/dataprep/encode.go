package dataprep

import (
	"errors"
	"sort"
)

// OneHotEncoder maps a categorical value to one indicator per label seen
// during Fit. Labels not in the vocabulary encode as all zeros.
type OneHotEncoder struct {
	Column     string
	Categories []string // sorted
}

func NewOneHotEncoder(column string) *OneHotEncoder {
	return &OneHotEncoder{Column: column}
}

// Fit builds the vocabulary from the distinct non-empty values.
func (e *OneHotEncoder) Fit(values []string) error {
	unique := map[string]struct{}{}
	for _, v := range values {
		if v == "" {
			continue
		}
		unique[v] = struct{}{}
	}
	if len(unique) == 0 {
		return errors.New("encoder: no labels to fit")
	}
	e.Categories = make([]string, 0, len(unique))
	for v := range unique {
		e.Categories = append(e.Categories, v)
	}
	sort.Strings(e.Categories)
	return nil
}

func (e *OneHotEncoder) lookup(v string) (int, bool) {
	i := sort.SearchStrings(e.Categories, v)
	return i, i < len(e.Categories) && e.Categories[i] == v
}

// Encode returns the indicator vector for v and whether v was known at fit time.
func (e *OneHotEncoder) Encode(v string) ([]float64, bool) {
	vec := make([]float64, len(e.Categories))
	i, ok := e.lookup(v)
	if ok {
		vec[i] = 1
	}
	return vec, ok
}

// FeatureNames returns "<column>_<label>" for every vocabulary entry.
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = e.Column + "_" + c
	}
	return names
}
