package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"FareFlex/internal/domain/models"
)

// treeNode is one node of a regression tree. Leaves carry a value, internal
// nodes split on feature <= threshold (left) versus > threshold (right).
type treeNode struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

// modelArtifact is the exported ensemble format. Tree outputs are already
// scaled by the learning rate at export time, so inference is just the base
// score plus the sum of leaf values.
type modelArtifact struct {
	ModelType   string  `json:"model_type"`
	NumFeatures int     `json:"num_features"`
	BaseScore   float64 `json:"base_score"`
	Trees       []tree  `json:"trees"`
}

// LocalEstimator runs the exported gradient-boosted ensemble in process.
// Immutable after load and safe for concurrent use.
type LocalEstimator struct {
	base  float64
	trees []tree
}

// LoadEstimator reads and validates a model artifact. Any structural problem
// is a hard error; the service must not start with a broken model.
func LoadEstimator(path string) (*LocalEstimator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var art modelArtifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if art.NumFeatures != models.FeatureCount {
		return nil, fmt.Errorf("model artifact %s: trained on %d features, expected %d",
			path, art.NumFeatures, models.FeatureCount)
	}
	if len(art.Trees) == 0 {
		return nil, fmt.Errorf("model artifact %s: empty ensemble", path)
	}
	for ti, t := range art.Trees {
		if len(t.Nodes) == 0 {
			return nil, fmt.Errorf("model artifact %s: tree %d has no nodes", path, ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= models.FeatureCount {
				return nil, fmt.Errorf("model artifact %s: tree %d node %d splits on feature %d",
					path, ti, ni, n.Feature)
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return nil, fmt.Errorf("model artifact %s: tree %d node %d has dangling child",
					path, ti, ni)
			}
		}
	}
	return &LocalEstimator{base: art.BaseScore, trees: art.Trees}, nil
}

// Infer returns the ensemble prediction for an encoded feature vector.
func (e *LocalEstimator) Infer(_ context.Context, feats [models.FeatureCount]float64) (float64, error) {
	pred := e.base
	for _, t := range e.trees {
		pred += t.score(feats)
	}
	if pred < 0 {
		return 0, fmt.Errorf("model produced negative price %.2f", pred)
	}
	return pred, nil
}

func (t tree) score(feats [models.FeatureCount]float64) float64 {
	i := 0
	// Node validation at load time guarantees termination within len(Nodes)
	// hops for trees without cycles; the hop cap catches cyclic ones.
	for hops := 0; hops <= len(t.Nodes); hops++ {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if feats[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return 0
}

// LabelEncoders maps categorical values to the integer codes the model was
// trained with, one table per categorical column.
type LabelEncoders struct {
	columns []string
	tables  map[string]map[string]int
	classes map[string][]string
}

// LoadEncoders reads the exported label-encoder tables. The file maps column
// name to its ordered class list; codes are list positions.
func LoadEncoders(path string) (*LabelEncoders, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoders: %w", err)
	}
	var classes map[string][]string
	if err := json.Unmarshal(raw, &classes); err != nil {
		return nil, fmt.Errorf("decode encoders %s: %w", path, err)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoders %s: no columns", path)
	}

	enc := &LabelEncoders{
		tables:  make(map[string]map[string]int, len(classes)),
		classes: classes,
	}
	for col, vals := range classes {
		if len(vals) == 0 {
			return nil, fmt.Errorf("encoders %s: column %s has no classes", path, col)
		}
		table := make(map[string]int, len(vals))
		for i, v := range vals {
			table[v] = i
		}
		enc.tables[col] = table
		enc.columns = append(enc.columns, col)
	}
	sort.Strings(enc.columns)
	return enc, nil
}

// Encode returns the trained code for value in column, or 0 for values the
// training set never saw. Code 0 is the most frequent class in each table,
// which keeps unseen carriers and airports close to the data distribution.
func (e *LabelEncoders) Encode(column, value string) int {
	table, ok := e.tables[column]
	if !ok {
		return 0
	}
	code, ok := table[value]
	if !ok {
		return 0
	}
	return code
}

// Categories returns the ordered class list for a column, nil if unknown.
func (e *LabelEncoders) Categories(column string) []string {
	vals, ok := e.classes[column]
	if !ok {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Columns lists the encoded columns in stable order.
func (e *LabelEncoders) Columns() []string {
	out := make([]string, len(e.columns))
	copy(out, e.columns)
	return out
}
