package model

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FareFlex/internal/domain/models"
)

func writeArtifact(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

const validModel = `{
  "model_type": "gradient_boosted_trees",
  "num_features": 23,
  "base_score": 100,
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 10, "left": 1, "right": 2},
      {"leaf": true, "value": 20},
      {"leaf": true, "value": 50}
    ]},
    {"nodes": [{"leaf": true, "value": 5}]}
  ]
}`

func TestLoadEstimatorAndInfer(t *testing.T) {
	est, err := LoadEstimator(writeArtifact(t, "model.json", validModel))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var feats [models.FeatureCount]float64
	feats[0] = 5 // left branch
	got, err := est.Infer(context.Background(), feats)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if got != 125 {
		t.Errorf("prediction = %v, want 125", got)
	}

	feats[0] = 30 // right branch
	got, err = est.Infer(context.Background(), feats)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if got != 155 {
		t.Errorf("prediction = %v, want 155", got)
	}
}

func TestLoadEstimatorRejectsBadArtifacts(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"wrong feature count",
			`{"num_features": 7, "trees": [{"nodes": [{"leaf": true}]}]}`,
			"expected 23",
		},
		{
			"empty ensemble",
			`{"num_features": 23, "trees": []}`,
			"empty ensemble",
		},
		{
			"feature out of range",
			`{"num_features": 23, "trees": [{"nodes": [
				{"feature": 23, "threshold": 1, "left": 1, "right": 1},
				{"leaf": true}
			]}]}`,
			"splits on feature 23",
		},
		{
			"dangling child",
			`{"num_features": 23, "trees": [{"nodes": [
				{"feature": 0, "threshold": 1, "left": 1, "right": 9}
			]}]}`,
			"dangling child",
		},
		{"not json", `not json at all`, "decode"},
	}
	for _, c := range cases {
		_, err := LoadEstimator(writeArtifact(t, "bad.json", c.body))
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: error %q missing %q", c.name, err, c.want)
		}
	}
}

func TestLoadEstimatorMissingFile(t *testing.T) {
	if _, err := LoadEstimator(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

const validEncoders = `{
  "AIRLINE_CODE": ["DL", "AA", "UA"],
  "ORIGIN_CITY": ["JFK", "LAX", "ORD"],
  "DEST_CITY": ["LAX", "JFK", "SFO"]
}`

func TestLoadEncoders(t *testing.T) {
	enc, err := LoadEncoders(writeArtifact(t, "encoders.json", validEncoders))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := enc.Encode(models.ColCarrier, "UA"); got != 2 {
		t.Errorf("UA = %d, want 2", got)
	}
	if got := enc.Encode(models.ColOrigin, "JFK"); got != 0 {
		t.Errorf("JFK = %d, want 0", got)
	}
	// Unseen values and unknown columns both fall back to code 0.
	if got := enc.Encode(models.ColCarrier, "ZZ"); got != 0 {
		t.Errorf("unseen carrier = %d, want 0", got)
	}
	if got := enc.Encode("NO_SUCH_COLUMN", "DL"); got != 0 {
		t.Errorf("unknown column = %d, want 0", got)
	}

	cols := enc.Columns()
	if len(cols) != 3 {
		t.Fatalf("columns = %v, want 3 entries", cols)
	}
	for i := 1; i < len(cols); i++ {
		if cols[i-1] > cols[i] {
			t.Fatalf("columns not sorted: %v", cols)
		}
	}

	cats := enc.Categories(models.ColDestination)
	if len(cats) != 3 || cats[2] != "SFO" {
		t.Errorf("destination categories = %v", cats)
	}
	cats[0] = "mutated"
	if enc.Categories(models.ColDestination)[0] != "LAX" {
		t.Error("Categories must return a copy")
	}
}

func TestLoadEncodersRejectsEmpty(t *testing.T) {
	if _, err := LoadEncoders(writeArtifact(t, "empty.json", `{}`)); err == nil {
		t.Fatal("expected error for empty encoder file")
	}
	if _, err := LoadEncoders(writeArtifact(t, "emptycol.json", `{"AIRLINE_CODE": []}`)); err == nil {
		t.Fatal("expected error for empty class list")
	}
}
