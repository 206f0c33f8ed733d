package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"demand-forecast-api/pkg/models"

	"github.com/rs/zerolog"
)

// CategoricalColumn is one categorical input with the fixed vocabulary the
// model was trained with. Values are one-hot encoded in vocabulary order;
// unseen values encode to an all-zero block.
type CategoricalColumn struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// NumericColumn is one numeric input with its train-time scaler parameters.
type NumericColumn struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// FeatureSchema is the fixed, ordered feature layout the model expects:
// all categorical one-hot blocks first, then the standardized numeric
// columns. It ships inside the artifact so serving can never drift from
// training.
type FeatureSchema struct {
	Categorical []CategoricalColumn `json:"categorical"`
	Numeric     []NumericColumn     `json:"numeric"`
	Defaults    map[string]any      `json:"defaults"`
}

// Width returns the dense feature vector length.
func (s *FeatureSchema) Width() int {
	width := len(s.Numeric)
	for _, c := range s.Categorical {
		width += len(c.Values)
	}
	return width
}

// TreeNode is one node of a regression tree. Non-leaf nodes route on
// feature < threshold.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a regression tree stored as a flat node array rooted at index 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (t *Tree) score(features models.FeatureVector) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Leaf {
			return node.Value
		}
		if features[node.Feature] < node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// ModelArtifact is the serialized estimator: a gradient-boosted tree
// ensemble plus the preprocessing schema it was trained against.
type ModelArtifact struct {
	Version   string        `json:"version"`
	TrainedAt string        `json:"trained_at"`
	BaseScore float64       `json:"base_score"`
	Schema    FeatureSchema `json:"schema"`
	Trees     []Tree        `json:"trees"`
}

// ModelHandle is a loaded, ready-to-use model instance. It is immutable
// after load and safe for concurrent use.
type ModelHandle struct {
	artifact *ModelArtifact
	path     string
	loadedAt time.Time
	width    int
}

// Schema returns the feature schema the handle was trained with.
func (h *ModelHandle) Schema() *FeatureSchema {
	return &h.artifact.Schema
}

// Version returns the handle's version metadata.
func (h *ModelHandle) Version() models.ModelVersion {
	return models.ModelVersion{
		Version:  h.artifact.Version,
		Path:     h.path,
		LoadedAt: h.loadedAt,
	}
}

// Predict scores every feature vector against the ensemble. The input
// order is preserved. A width mismatch returns a PredictionError.
func (h *ModelHandle) Predict(features []models.FeatureVector) ([]float64, error) {
	out := make([]float64, len(features))
	for i, vector := range features {
		if len(vector) != h.width {
			return nil, &PredictionError{Expected: h.width, Got: len(vector), Record: i}
		}
		score := h.artifact.BaseScore
		for t := range h.artifact.Trees {
			score += h.artifact.Trees[t].score(vector)
		}
		out[i] = score
	}
	return out, nil
}

// ModelService owns the loaded model. The handle is swapped atomically so
// in-flight predictions finish against the handle they started with while
// new requests see the fresh one.
type ModelService struct {
	path   string
	handle atomic.Pointer[ModelHandle]
	logger zerolog.Logger
}

// NewModelService creates a ModelService for the artifact at path. No
// artifact is loaded until Load is called.
func NewModelService(path string, logger zerolog.Logger) *ModelService {
	return &ModelService{
		path:   path,
		logger: logger.With().Str("component", "model").Logger(),
	}
}

// Load reads, validates and installs the artifact. It is called once at
// startup and again on operator-triggered reloads.
func (ms *ModelService) Load() error {
	data, err := os.ReadFile(ms.path)
	if err != nil {
		return &ModelLoadError{Path: ms.path, Err: err}
	}

	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return &ModelLoadError{Path: ms.path, Err: err}
	}

	if err := validateArtifact(&artifact); err != nil {
		return &ModelLoadError{Path: ms.path, Err: err}
	}

	handle := &ModelHandle{
		artifact: &artifact,
		path:     ms.path,
		loadedAt: time.Now().UTC(),
		width:    artifact.Schema.Width(),
	}
	ms.handle.Store(handle)

	ms.logger.Info().
		Str("path", ms.path).
		Str("version", artifact.Version).
		Int("trees", len(artifact.Trees)).
		Int("width", handle.width).
		Msg("model loaded")

	return nil
}

// Reload re-reads the artifact from disk and swaps it in atomically.
func (ms *ModelService) Reload() error {
	return ms.Load()
}

// Ready reports whether a valid handle is installed. The health endpoint
// depends on this.
func (ms *ModelService) Ready() bool {
	return ms.handle.Load() != nil
}

// Handle returns the current handle, or a ModelLoadError when no artifact
// has been loaded yet.
func (ms *ModelService) Handle() (*ModelHandle, error) {
	h := ms.handle.Load()
	if h == nil {
		return nil, &ModelLoadError{Path: ms.path, Err: errors.New("model not loaded")}
	}
	return h, nil
}

// Version returns the loaded model's version metadata.
func (ms *ModelService) Version() (models.ModelVersion, error) {
	h, err := ms.Handle()
	if err != nil {
		return models.ModelVersion{}, err
	}
	return h.Version(), nil
}

// validateArtifact rejects artifacts whose schema, default table and trees
// are not mutually consistent, so a bad deploy fails at startup instead of
// at the first prediction.
func validateArtifact(artifact *ModelArtifact) error {
	if artifact.Version == "" {
		return errors.New("artifact has no version")
	}
	if len(artifact.Schema.Numeric) == 0 && len(artifact.Schema.Categorical) == 0 {
		return errors.New("artifact schema is empty")
	}

	columns := make(map[string]bool)
	for _, c := range artifact.Schema.Categorical {
		if len(c.Values) == 0 {
			return fmt.Errorf("categorical column %q has an empty vocabulary", c.Name)
		}
		columns[c.Name] = true
	}
	for _, n := range artifact.Schema.Numeric {
		columns[n.Name] = true
	}

	for name := range artifact.Schema.Defaults {
		if !columns[name] {
			return fmt.Errorf("default table names %q which is not a schema column", name)
		}
	}

	width := artifact.Schema.Width()
	for ti, tree := range artifact.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= width {
				return fmt.Errorf("tree %d node %d references feature %d outside schema width %d", ti, ni, node.Feature, width)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has out-of-range children", ti, ni)
			}
		}
	}

	return nil
}
