package personality

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeatureCount is the network input width: emotion(4), guilt(1), body(3),
// context(5), one-hot tag and both bias vectors.
const FeatureCount = axisCount + 1 + 3 + 5 + TagCount + axisCount + axisCount

// ErrInvalidNetwork marks a weight set whose shapes do not line up.
var ErrInvalidNetwork = errors.New("invalid network")

// NetworkConfig is a two-layer feed-forward network. Weight matrices are
// row-major with one row per destination unit.
type NetworkConfig struct {
	InputSize  int       `json:"input_size" yaml:"input_size"`
	HiddenSize int       `json:"hidden_size" yaml:"hidden_size"`
	OutputSize int       `json:"output_size" yaml:"output_size"`
	W1         []float64 `json:"w1" yaml:"w1"`
	B1         []float64 `json:"b1" yaml:"b1"`
	W2         []float64 `json:"w2" yaml:"w2"`
	B2         []float64 `json:"b2" yaml:"b2"`
}

// Validate checks the declared sizes against the arrays and against the
// feature layout the engine produces.
func (c *NetworkConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: no config", ErrInvalidNetwork)
	}
	if c.InputSize != FeatureCount {
		return fmt.Errorf("%w: input_size %d, want %d", ErrInvalidNetwork, c.InputSize, FeatureCount)
	}
	if c.OutputSize != axisCount {
		return fmt.Errorf("%w: output_size %d, want %d", ErrInvalidNetwork, c.OutputSize, axisCount)
	}
	if c.HiddenSize <= 0 {
		return fmt.Errorf("%w: hidden_size must be positive", ErrInvalidNetwork)
	}
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"w1", len(c.W1), c.InputSize * c.HiddenSize},
		{"b1", len(c.B1), c.HiddenSize},
		{"w2", len(c.W2), c.HiddenSize * c.OutputSize},
		{"b2", len(c.B2), c.OutputSize},
	}
	for _, chk := range checks {
		if chk.got != chk.want {
			return fmt.Errorf("%w: len(%s) = %d, want %d", ErrInvalidNetwork, chk.name, chk.got, chk.want)
		}
	}
	return nil
}

// LoadNetworkConfig reads weights from a .json or .yaml file.
func LoadNetworkConfig(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network weights: %w", err)
	}

	var cfg NetworkConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse network weights: %w", err)
	}
	return &cfg, nil
}

// Network evaluates a validated NetworkConfig. Weights are never modified.
type Network struct {
	cfg NetworkConfig
}

// NewNetwork validates cfg and returns a ready network.
func NewNetwork(cfg *NetworkConfig) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Network{cfg: *cfg}, nil
}

func (n *Network) Name() string { return StrategyNetwork }

// Evaluate runs the forward pass: ReLU hidden layer, tanh output.
func (n *Network) Evaluate(in Input) Vector {
	out := n.Forward(Features(in))
	var d Vector
	copy(d[:], out)
	return d
}

// Forward runs the raw forward pass over a feature vector of length InputSize.
func (n *Network) Forward(x []float64) []float64 {
	in, hid, outN := n.cfg.InputSize, n.cfg.HiddenSize, n.cfg.OutputSize

	hidden := make([]float64, hid)
	for i := 0; i < hid; i++ {
		sum := n.cfg.B1[i]
		row := n.cfg.W1[i*in : (i+1)*in]
		for j, w := range row {
			sum += w * x[j]
		}
		hidden[i] = math.Max(0, sum)
	}

	out := make([]float64, outN)
	for i := 0; i < outN; i++ {
		sum := n.cfg.B2[i]
		row := n.cfg.W2[i*hid : (i+1)*hid]
		for j, w := range row {
			sum += w * hidden[j]
		}
		out[i] = math.Tanh(clamp(sum, -10, 10))
	}
	return out
}

// Features lays out the network input vector.
func Features(in Input) []float64 {
	e := in.Event
	x := make([]float64, 0, FeatureCount)

	x = append(x,
		clamp01(in.Emotion.Hope),
		clamp01(in.Emotion.Happiness),
		clamp01(in.Emotion.Trust),
		clamp01(in.Emotion.Affinity),
		clamp01(in.Guilt),
		clamp01(e.Health),
		clamp01(e.Fatigue),
		clamp01(e.Stress),
		e.NormalizedImpact(),
		clamp(e.PlayerTone, -1, 1),
		clamp01(e.CampState),
		clamp01(e.DayProgress),
		clamp01(e.TimeSinceContact),
	)

	var oneHot [TagCount]float64
	if e.Tag.Valid() {
		oneHot[e.Tag] = 1
	}
	x = append(x, oneHot[:]...)
	x = append(x, in.ShortBias[:]...)
	x = append(x, in.LongBias[:]...)
	return x
}
