package features

import (
	"fmt"
	"strings"

	"ChurnPull/internal/domain/models"
)

// BaseColumns are the non-geography columns in model order.
var BaseColumns = []string{
	"CreditScore",
	"Gender",
	"Age",
	"Tenure",
	"Balance",
	"NumOfProducts",
	"HasCrCard",
	"IsActiveMember",
	"EstimatedSalary",
}

// Vector is a prepared model input. Raw holds the encoded values before
// scaling, Scaled is what the model consumes.
type Vector struct {
	Names  []string
	Raw    []float64
	Scaled []float64
}

func (v Vector) Len() int { return len(v.Names) }

// Artifacts bundles the fitted encoders and scaler. A bundle is built once
// at startup and shared read-only.
type Artifacts struct {
	Gender    *LabelEncoder
	Geography *OneHotEncoder
	Scaler    *Scaler
}

// NewArtifacts checks that the scaler was fitted on exactly the columns the
// preparer produces, in the same order.
func NewArtifacts(gender *LabelEncoder, geo *OneHotEncoder, scaler *Scaler) (*Artifacts, error) {
	if gender == nil || geo == nil || scaler == nil {
		return nil, fmt.Errorf("artifacts: gender encoder, geography encoder and scaler are required")
	}
	if err := checkColumns(Columns(geo), scaler.FeatureNames()); err != nil {
		return nil, err
	}
	return &Artifacts{Gender: gender, Geography: geo, Scaler: scaler}, nil
}

// Columns is the prepared column order for the given geography encoder.
func (a *Artifacts) Columns() []string { return Columns(a.Geography) }

// Width is the prepared vector length.
func (a *Artifacts) Width() int { return a.Scaler.Width() }

// Prepare runs Prepare with the bundled artifacts.
func (a *Artifacts) Prepare(in models.CustomerInput) (Vector, error) {
	return Prepare(in, a.Gender, a.Geography, a.Scaler)
}

// Options describes the form choices implied by the fitted encoders.
func (a *Artifacts) Options() models.FormOptions {
	return models.FormOptions{
		Geographies: a.Geography.Categories(),
		Genders:     a.Gender.Classes(),
		YesNo:       []string{models.Yes, models.No},
		Ranges:      models.InputRanges(),
	}
}

// Columns returns BaseColumns followed by the one-hot geography columns.
func Columns(geo *OneHotEncoder) []string {
	out := make([]string, 0, len(BaseColumns)+len(geo.categories))
	out = append(out, BaseColumns...)
	return append(out, geo.FeatureNames()...)
}

// Prepare encodes and scales one input into the model's feature layout.
func Prepare(in models.CustomerInput, gender *LabelEncoder, geo *OneHotEncoder, scaler *Scaler) (Vector, error) {
	g, err := gender.Transform(in.Gender)
	if err != nil {
		return Vector{}, err
	}
	hot, err := geo.Transform(in.Geography)
	if err != nil {
		return Vector{}, err
	}
	card, err := YesNo("HasCrCard", in.HasCrCard)
	if err != nil {
		return Vector{}, err
	}
	active, err := YesNo("IsActiveMember", in.IsActiveMember)
	if err != nil {
		return Vector{}, err
	}

	raw := make([]float64, 0, len(BaseColumns)+len(hot))
	raw = append(raw,
		float64(in.CreditScore),
		float64(g),
		float64(in.Age),
		float64(in.Tenure),
		in.Balance,
		float64(in.NumOfProducts),
		card,
		active,
		in.EstimatedSalary,
	)
	raw = append(raw, hot...)

	names := Columns(geo)
	if err := checkColumns(names, scaler.names); err != nil {
		return Vector{}, err
	}

	scaled, err := scaler.Transform(raw)
	if err != nil {
		return Vector{}, err
	}
	return Vector{Names: names, Raw: raw, Scaled: scaled}, nil
}

// YesNo maps "Yes" to 1 and "No" to 0.
func YesNo(feature, v string) (float64, error) {
	switch v {
	case models.Yes:
		return 1, nil
	case models.No:
		return 0, nil
	}
	return 0, &UnknownCategoryError{Feature: feature, Value: v, Known: []string{models.Yes, models.No}}
}

func checkColumns(got, want []string) error {
	if len(got) != len(want) {
		return &ShapeMismatchError{
			Stage:    "columns",
			Expected: len(want),
			Got:      len(got),
			Detail:   fmt.Sprintf("prepared [%s], fitted [%s]", strings.Join(got, ", "), strings.Join(want, ", ")),
		}
	}
	for i := range got {
		if got[i] != want[i] {
			return &ShapeMismatchError{
				Stage:    "columns",
				Expected: len(want),
				Got:      len(got),
				Detail:   fmt.Sprintf("column %d is %q, fitted as %q", i, got[i], want[i]),
			}
		}
	}
	return nil
}
