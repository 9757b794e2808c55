package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ChurnPull/internal/domain/models"
	"ChurnPull/internal/services/features"
)

var testFiles = ArtifactFiles{
	GenderEncoder: "label_encoder_gender.json",
	GeoEncoder:    "onehot_encoder_geo.json",
	Scaler:        "scaler.json",
	Model:         "model.json",
}

func TestLoadArtifacts(t *testing.T) {
	arts, m, err := LoadArtifacts("testdata", testFiles)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if arts.Width() != 12 || m.InputDim() != 12 {
		t.Fatalf("unexpected widths %d/%d", arts.Width(), m.InputDim())
	}
	if m.Name() != "churn-mlp-test" {
		t.Fatalf("unexpected model name %s", m.Name())
	}

	v, err := arts.Prepare(models.CustomerInput{
		CreditScore: 650, Geography: "France", Gender: "Male", Age: 40, Tenure: 5,
		Balance: 50000, NumOfProducts: 2, HasCrCard: "Yes", IsActiveMember: "Yes", EstimatedSalary: 60000,
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	p, err := m.PredictProba(context.Background(), v.Scaled)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if p < 0 || p > 1 {
		t.Fatalf("probability out of range: %v", p)
	}
}

func TestLoadArtifactsWithoutModel(t *testing.T) {
	files := testFiles
	files.Model = ""
	arts, m, err := LoadArtifacts("testdata", files)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if arts == nil || m != nil {
		t.Fatalf("expected artifacts without model")
	}
}

func TestLoadArtifactsMissingFile(t *testing.T) {
	files := testFiles
	files.Scaler = "nope.json"
	if _, _, err := LoadArtifacts("testdata", files); err == nil {
		t.Fatalf("expected error for missing scaler")
	}
}

func copyTestdata(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{testFiles.GenderEncoder, testFiles.GeoEncoder, testFiles.Scaler, testFiles.Model} {
		b, err := os.ReadFile(filepath.Join("testdata", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadArtifactsGeoScalerMismatch(t *testing.T) {
	dir := copyTestdata(t)
	geo := `{"feature":"Geography","categories":["France","Germany","Italy","Spain"]}`
	if err := os.WriteFile(filepath.Join(dir, testFiles.GeoEncoder), []byte(geo), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := LoadArtifacts(dir, testFiles)
	if !errors.Is(err, features.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestLoadArtifactsModelWidthMismatch(t *testing.T) {
	dir := copyTestdata(t)
	mdl := `{"input_dim":11,"layers":[{"weights":[[0],[0],[0],[0],[0],[0],[0],[0],[0],[0],[0]],"bias":[0],"activation":"sigmoid"}]}`
	if err := os.WriteFile(filepath.Join(dir, testFiles.Model), []byte(mdl), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := LoadArtifacts(dir, testFiles)
	var sme *features.ShapeMismatchError
	if !errors.As(err, &sme) || sme.Stage != "model" {
		t.Fatalf("expected model shape mismatch, got %v", err)
	}
}

func TestLoadArtifactsMinMaxScaler(t *testing.T) {
	dir := copyTestdata(t)
	sc := `{"kind":"minmax","feature_names":["CreditScore","Gender","Age","Tenure","Balance","NumOfProducts","HasCrCard","IsActiveMember","EstimatedSalary","Geography_France","Geography_Germany","Geography_Spain"],
"min":[0,0,0,0,0,0,0,0,0,0,0,0],"scale":[1,1,1,1,1,1,1,1,1,1,1,1]}`
	if err := os.WriteFile(filepath.Join(dir, testFiles.Scaler), []byte(sc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	arts, _, err := LoadArtifacts(dir, testFiles)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if arts.Scaler.Kind() != features.ScalerMinMax {
		t.Fatalf("expected minmax scaler, got %s", arts.Scaler.Kind())
	}
}

func TestLoadArtifactsDuplicateClasses(t *testing.T) {
	dir := copyTestdata(t)
	if err := os.WriteFile(filepath.Join(dir, testFiles.GenderEncoder), []byte(`{"classes":["Male","Male"]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadArtifacts(dir, testFiles); err == nil {
		t.Fatalf("expected duplicate class error")
	}
}
