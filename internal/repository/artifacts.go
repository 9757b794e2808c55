package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ChurnPull/internal/services/features"
	"ChurnPull/internal/services/model"
)

// ArtifactFiles names the fitted artifacts inside an artifact directory.
type ArtifactFiles struct {
	GenderEncoder string
	GeoEncoder    string
	Scaler        string
	Model         string // empty when the model is served remotely
}

type labelEncoderFile struct {
	Feature string   `json:"feature"`
	Classes []string `json:"classes"`
}

type oneHotEncoderFile struct {
	Feature    string   `json:"feature"`
	Categories []string `json:"categories"`
}

type scalerFile struct {
	Kind         features.ScalerKind `json:"kind"`
	FeatureNames []string            `json:"feature_names"`
	Mean         []float64           `json:"mean"`
	Scale        []float64           `json:"scale"`
	Min          []float64           `json:"min"`
}

// LoadArtifacts reads and cross-checks the fitted encoders, the scaler and,
// when files.Model is set, the local model. The returned model is nil for
// remote serving.
func LoadArtifacts(dir string, files ArtifactFiles) (*features.Artifacts, *model.MLP, error) {
	var le labelEncoderFile
	if err := readJSON(dir, files.GenderEncoder, &le); err != nil {
		return nil, nil, err
	}
	if le.Feature == "" {
		le.Feature = "Gender"
	}
	gender, err := features.NewLabelEncoder(le.Feature, le.Classes)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", files.GenderEncoder, err)
	}

	var oh oneHotEncoderFile
	if err := readJSON(dir, files.GeoEncoder, &oh); err != nil {
		return nil, nil, err
	}
	if oh.Feature == "" {
		oh.Feature = "Geography"
	}
	geo, err := features.NewOneHotEncoder(oh.Feature, oh.Categories)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", files.GeoEncoder, err)
	}

	var sf scalerFile
	if err := readJSON(dir, files.Scaler, &sf); err != nil {
		return nil, nil, err
	}
	scaler, err := newScaler(sf)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", files.Scaler, err)
	}

	arts, err := features.NewArtifacts(gender, geo, scaler)
	if err != nil {
		return nil, nil, err
	}

	if files.Model == "" {
		return arts, nil, nil
	}

	raw, err := os.ReadFile(filepath.Join(dir, files.Model))
	if err != nil {
		return nil, nil, fmt.Errorf("read model: %w", err)
	}
	spec, err := model.ParseSpec(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", files.Model, err)
	}
	m, err := model.NewMLP(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", files.Model, err)
	}
	if m.InputDim() != arts.Width() {
		return nil, nil, &features.ShapeMismatchError{
			Stage:    "model",
			Expected: arts.Width(),
			Got:      m.InputDim(),
			Detail:   "model input_dim differs from scaler width",
		}
	}
	return arts, m, nil
}

func newScaler(sf scalerFile) (*features.Scaler, error) {
	if sf.Kind == "" {
		sf.Kind = features.ScalerStandard
	}
	offset := sf.Mean
	if sf.Kind == features.ScalerMinMax {
		offset = sf.Min
	}
	return features.NewScaler(sf.Kind, sf.FeatureNames, offset, sf.Scale)
}

func readJSON(dir, name string, dest interface{}) error {
	if name == "" {
		return fmt.Errorf("artifact file name is empty")
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
