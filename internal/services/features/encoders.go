package features

import "fmt"

// LabelEncoder maps a fitted set of class labels to their integer index.
type LabelEncoder struct {
	feature string
	classes []string
	index   map[string]int
}

// NewLabelEncoder builds an encoder over classes in their fitted order.
func NewLabelEncoder(feature string, classes []string) (*LabelEncoder, error) {
	index, err := indexOf(feature, classes)
	if err != nil {
		return nil, err
	}
	return &LabelEncoder{feature: feature, classes: append([]string(nil), classes...), index: index}, nil
}

// Feature is the column this encoder was fitted on.
func (e *LabelEncoder) Feature() string { return e.feature }

// Classes returns a copy of the fitted labels.
func (e *LabelEncoder) Classes() []string { return append([]string(nil), e.classes...) }

// Transform returns the integer code for label.
func (e *LabelEncoder) Transform(label string) (int, error) {
	i, ok := e.index[label]
	if !ok {
		return 0, &UnknownCategoryError{Feature: e.feature, Value: label, Known: e.Classes()}
	}
	return i, nil
}

// Inverse returns the label for an integer code.
func (e *LabelEncoder) Inverse(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("%s: code %d out of range [0, %d)", e.feature, code, len(e.classes))
	}
	return e.classes[code], nil
}

// OneHotEncoder expands one categorical column into a 0/1 column per
// fitted category.
type OneHotEncoder struct {
	feature    string
	categories []string
	index      map[string]int
}

// NewOneHotEncoder builds an encoder over categories in their fitted order.
func NewOneHotEncoder(feature string, categories []string) (*OneHotEncoder, error) {
	index, err := indexOf(feature, categories)
	if err != nil {
		return nil, err
	}
	return &OneHotEncoder{feature: feature, categories: append([]string(nil), categories...), index: index}, nil
}

func (e *OneHotEncoder) Feature() string { return e.feature }

// Categories returns a copy of the fitted categories.
func (e *OneHotEncoder) Categories() []string { return append([]string(nil), e.categories...) }

// FeatureNames returns the generated column names, "<feature>_<category>".
func (e *OneHotEncoder) FeatureNames() []string {
	out := make([]string, len(e.categories))
	for i, c := range e.categories {
		out[i] = e.feature + "_" + c
	}
	return out
}

// Transform returns a vector with a single 1 at the category's position.
func (e *OneHotEncoder) Transform(category string) ([]float64, error) {
	i, ok := e.index[category]
	if !ok {
		return nil, &UnknownCategoryError{Feature: e.feature, Value: category, Known: e.Categories()}
	}
	out := make([]float64, len(e.categories))
	out[i] = 1
	return out, nil
}

func indexOf(feature string, labels []string) (map[string]int, error) {
	if feature == "" {
		return nil, fmt.Errorf("encoder feature name is empty")
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%s: encoder has no categories", feature)
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; dup {
			return nil, fmt.Errorf("%s: duplicate category %q", feature, l)
		}
		index[l] = i
	}
	return index, nil
}
