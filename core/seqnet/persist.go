package seqnet

import (
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// ArtifactVersion identifies the on-disk model format. Bump together
// with any change to window length, normalization or tensor shape.
const ArtifactVersion = 1

// Meta is the artifact header: the contract shared between the
// trainer and the inference service.
type Meta struct {
	Version       int
	ModelID       string
	SeqLen        int
	Features      int
	Normalization float64
	TrainedAt     time.Time
	TestMSE       float64
}

type layerState struct {
	Type       string
	In         int
	Out        int
	Steps      int
	Activation string
	Params     [][]float64
}

type artifact struct {
	Meta   Meta
	Layers []layerState
}

// Save persists the network and header with gob encoding.
func Save(path string, n *Network, meta Meta) error {
	meta.Version = ArtifactVersion
	art := artifact{Meta: meta}
	for _, l := range n.Layers() {
		st, err := snapshot(l)
		if err != nil {
			return err
		}
		art.Layers = append(art.Layers, st)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(art); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return f.Close()
}

// Load reads a persisted network. The returned network carries an MSE
// loss and a default Adam optimizer so it can be fine-tuned, but is
// primarily meant for inference.
func Load(path string) (*Network, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, err
	}
	defer func() { _ = f.Close() }()

	var art artifact
	if err := gob.NewDecoder(f).Decode(&art); err != nil {
		return nil, Meta{}, fmt.Errorf("decode model %s: %w", path, err)
	}
	if art.Meta.Version != ArtifactVersion {
		return nil, Meta{}, fmt.Errorf("model %s: artifact version %d, want %d", path, art.Meta.Version, ArtifactVersion)
	}

	// Weights are overwritten below, the init seed is irrelevant.
	rng := rand.New(rand.NewSource(0))
	layers := make([]Layer, 0, len(art.Layers))
	for _, st := range art.Layers {
		l, err := restore(st, rng)
		if err != nil {
			return nil, Meta{}, fmt.Errorf("model %s: %w", path, err)
		}
		layers = append(layers, l)
	}
	return New(layers, MSE{}, NewAdam(0.001)), art.Meta, nil
}

func snapshot(l Layer) (layerState, error) {
	var st layerState
	switch v := l.(type) {
	case *GRU:
		st.Type = "gru"
		st.In = v.Features()
		st.Out = v.Hidden()
		st.Steps = v.Steps()
	case *Dense:
		st.Type = "dense"
		st.In = v.InSize()
		st.Out = v.OutSize()
		st.Activation = v.Activation().Name()
	default:
		return st, fmt.Errorf("unsupported layer type %T", l)
	}
	for _, p := range l.Params() {
		cp := make([]float64, len(p))
		copy(cp, p)
		st.Params = append(st.Params, cp)
	}
	return st, nil
}

func restore(st layerState, rng *rand.Rand) (Layer, error) {
	var l Layer
	switch st.Type {
	case "gru":
		l = NewGRU(st.In, st.Out, st.Steps, rng)
	case "dense":
		act, ok := activationByName(st.Activation)
		if !ok {
			return nil, fmt.Errorf("unknown activation %q", st.Activation)
		}
		l = NewDense(st.In, st.Out, act, rng)
	default:
		return nil, fmt.Errorf("unknown layer type %q", st.Type)
	}
	params := l.Params()
	if len(params) != len(st.Params) {
		return nil, fmt.Errorf("layer %s: %d parameter groups, want %d", st.Type, len(st.Params), len(params))
	}
	for i, p := range st.Params {
		if len(params[i]) != len(p) {
			return nil, fmt.Errorf("layer %s: group %d has %d params, want %d", st.Type, i, len(p), len(params[i]))
		}
		copy(params[i], p)
	}
	return l, nil
}
