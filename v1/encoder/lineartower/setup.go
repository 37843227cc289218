// Package lineartower is a small, dependency-free implementation of the
// encoder Capability with a genuinely differentiable text tower.
//
// The tower is a token-embedding table followed by a linear projection with
// mean pooling. Forward and Backward are exact, so gradient-based alignment
// behaves like it would against a real model, just in a tiny parameter space.
// Image embedding is a deterministic hash of the image bytes: identical bytes
// always land on the same direction in the embedding space.
//
// It exists for the library's tests and for local development without a model
// runtime, the same way an in-memory store stands in for a remote one.
package lineartower

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"github.com/stablecanvas/aesthetic/v1/encoder"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// Config controls tower construction.
type Config struct {
	// ModelID is the identity reported by ID(). Default "lineartower".
	ModelID string

	// Dimension is the embedding width D. Default 64.
	Dimension int

	// VocabSize is the token-embedding table height; token ids are taken
	// modulo this. Default 1024.
	VocabSize int

	// ChunkLen is the fixed token window reported to the aligner. Default 77.
	ChunkLen int

	// Seed initializes the parameter tables deterministically.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.ModelID == "" {
		c.ModelID = "lineartower"
	}
	if c.Dimension <= 0 {
		c.Dimension = 64
	}
	if c.VocabSize <= 0 {
		c.VocabSize = 1024
	}
	if c.ChunkLen <= 0 {
		c.ChunkLen = 77
	}
	return c
}

// Tower implements encoder.Capability and encoder.TrainableTextTower.
type Tower struct {
	cfg Config

	// embed is the [VocabSize, Dimension] token table, row-major.
	// proj is the [Dimension, Dimension] projection, row-major.
	embed *encoder.Parameter
	proj  *encoder.Parameter

	// caches from the last Forward call, consumed by Backward.
	lastTokens encoder.TokenBatch
	lastPooled vecmath.Batch

	released bool
}

// New builds a tower with deterministically initialized parameters.
func New(cfg Config) *Tower {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	embed := make([]float32, cfg.VocabSize*cfg.Dimension)
	for i := range embed {
		embed[i] = float32(rng.NormFloat64()) * 0.1
	}
	proj := make([]float32, cfg.Dimension*cfg.Dimension)
	for i := 0; i < cfg.Dimension; i++ {
		for j := 0; j < cfg.Dimension; j++ {
			v := float32(rng.NormFloat64()) * 0.05
			if i == j {
				v += 1 // start near identity so outputs are non-degenerate
			}
			proj[i*cfg.Dimension+j] = v
		}
	}

	return &Tower{
		cfg: cfg,
		embed: &encoder.Parameter{
			Name: "embed",
			Data: embed,
			Grad: make([]float32, len(embed)),
		},
		proj: &encoder.Parameter{
			Name: "proj",
			Data: proj,
			Grad: make([]float32, len(proj)),
		},
	}
}

// Loader adapts New into an encoder.LoadFunc. The requested model identity
// overrides cfg.ModelID.
func Loader(cfg Config) encoder.LoadFunc {
	return func(ctx context.Context, modelID string) (encoder.Capability, error) {
		c := cfg
		c.ModelID = modelID
		return New(c), nil
	}
}

// ID implements encoder.Capability.
func (t *Tower) ID() string { return t.cfg.ModelID }

// Dimension implements encoder.TextTower.
func (t *Tower) Dimension() int { return t.cfg.Dimension }

// ChunkLen implements encoder.TextTower.
func (t *Tower) ChunkLen() int { return t.cfg.ChunkLen }

// EncodeImages hashes each image payload into a stable unit direction.
func (t *Tower) EncodeImages(ctx context.Context, images [][]byte) (vecmath.Batch, error) {
	if t.released {
		return nil, encoder.ErrModelUnavailable
	}
	out := make(vecmath.Batch, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := fnv.New64a()
		h.Write(img)
		rng := rand.New(rand.NewSource(int64(h.Sum64())))
		v := make(vecmath.Vector, t.cfg.Dimension)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		unit, err := vecmath.Normalize(v)
		if err != nil {
			return nil, err
		}
		out[i] = unit
	}
	return out, nil
}

// EncodeText maps whitespace-separated words to token ids and runs Forward
// on the single resulting row.
func (t *Tower) EncodeText(ctx context.Context, text string) (vecmath.Vector, error) {
	if t.released {
		return nil, encoder.ErrModelUnavailable
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, fmt.Errorf("lineartower: empty text")
	}
	row := make([]int64, len(words))
	for i, w := range words {
		h := fnv.New64a()
		h.Write([]byte(w))
		row[i] = int64(h.Sum64() % uint64(t.cfg.VocabSize))
	}
	out, err := t.Forward(encoder.TokenBatch{row})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CloneTextTower returns a tower with private copies of the parameters.
func (t *Tower) CloneTextTower() (encoder.TrainableTextTower, error) {
	if t.released {
		return nil, encoder.ErrModelUnavailable
	}
	clone := &Tower{
		cfg: t.cfg,
		embed: &encoder.Parameter{
			Name: t.embed.Name,
			Data: append([]float32(nil), t.embed.Data...),
			Grad: make([]float32, len(t.embed.Data)),
		},
		proj: &encoder.Parameter{
			Name: t.proj.Name,
			Data: append([]float32(nil), t.proj.Data...),
			Grad: make([]float32, len(t.proj.Data)),
		},
	}
	return clone, nil
}

// Parameters implements encoder.TrainableTextTower.
func (t *Tower) Parameters() []*encoder.Parameter {
	return []*encoder.Parameter{t.embed, t.proj}
}

// Release frees the tower. Subsequent use fails with ErrModelUnavailable.
func (t *Tower) Release() {
	t.released = true
	t.lastTokens = nil
	t.lastPooled = nil
}

// Forward mean-pools the token embeddings of each row and applies the
// projection. Caches the pooled activations for Backward.
func (t *Tower) Forward(tokens encoder.TokenBatch) (vecmath.Batch, error) {
	if t.released {
		return nil, encoder.ErrModelUnavailable
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("lineartower: empty token batch")
	}
	d := t.cfg.Dimension
	pooled := make(vecmath.Batch, len(tokens))
	out := make(vecmath.Batch, len(tokens))
	for b, row := range tokens {
		if len(row) == 0 {
			return nil, fmt.Errorf("lineartower: empty token row %d", b)
		}
		p := make(vecmath.Vector, d)
		for _, tok := range row {
			base := int(tok%int64(t.cfg.VocabSize)) * d
			for j := 0; j < d; j++ {
				p[j] += t.embed.Data[base+j]
			}
		}
		for j := range p {
			p[j] /= float32(len(row))
		}
		pooled[b] = p
		out[b] = t.project(p)
	}
	t.lastTokens = tokens
	t.lastPooled = pooled
	return out, nil
}

// Backward accumulates exact parameter gradients for the last Forward call.
func (t *Tower) Backward(grad vecmath.Batch) error {
	if t.released {
		return encoder.ErrModelUnavailable
	}
	if t.lastPooled == nil {
		return fmt.Errorf("lineartower: Backward without a preceding Forward")
	}
	if len(grad) != len(t.lastPooled) {
		return fmt.Errorf("lineartower: gradient batch %d does not match forward batch %d", len(grad), len(t.lastPooled))
	}
	d := t.cfg.Dimension
	for b, g := range grad {
		p := t.lastPooled[b]
		// d out_i / d proj[i][j] = pooled_j
		for i := 0; i < d; i++ {
			gi := g[i]
			for j := 0; j < d; j++ {
				t.proj.Grad[i*d+j] += gi * p[j]
			}
		}
		// d loss / d pooled_j = sum_i proj[i][j] * g_i
		dpooled := make([]float32, d)
		for i := 0; i < d; i++ {
			gi := g[i]
			for j := 0; j < d; j++ {
				dpooled[j] += t.proj.Data[i*d+j] * gi
			}
		}
		// Pooling spreads the gradient evenly over the row's tokens.
		row := t.lastTokens[b]
		scale := 1 / float32(len(row))
		for _, tok := range row {
			base := int(tok%int64(t.cfg.VocabSize)) * d
			for j := 0; j < d; j++ {
				t.embed.Grad[base+j] += dpooled[j] * scale
			}
		}
	}
	return nil
}

// HiddenStates returns per-position states. stopAtLayers == 1 selects the
// projected final state; larger values select the raw token embedding
// (the earlier layer) followed by the trailing layer normalization.
func (t *Tower) HiddenStates(tokens encoder.TokenBatch, stopAtLayers int) (vecmath.Conditioning, error) {
	if t.released {
		return nil, encoder.ErrModelUnavailable
	}
	if stopAtLayers < 1 {
		stopAtLayers = 1
	}
	d := t.cfg.Dimension
	out := make(vecmath.Conditioning, len(tokens))
	for b, row := range tokens {
		out[b] = make([]vecmath.Vector, len(row))
		for s, tok := range row {
			base := int(tok%int64(t.cfg.VocabSize)) * d
			h := make(vecmath.Vector, d)
			copy(h, t.embed.Data[base:base+d])
			if stopAtLayers > 1 {
				out[b][s] = layerNorm(h)
			} else {
				out[b][s] = t.project(h)
			}
		}
	}
	return out, nil
}

func (t *Tower) project(v vecmath.Vector) vecmath.Vector {
	d := t.cfg.Dimension
	out := make(vecmath.Vector, d)
	for i := 0; i < d; i++ {
		var sum float32
		row := t.proj.Data[i*d : (i+1)*d]
		for j := 0; j < d; j++ {
			sum += row[j] * v[j]
		}
		out[i] = sum
	}
	return out
}

func layerNorm(v vecmath.Vector) vecmath.Vector {
	var mean float64
	for _, x := range v {
		mean += float64(x)
	}
	mean /= float64(len(v))
	var variance float64
	for _, x := range v {
		d := float64(x) - mean
		variance += d * d
	}
	variance /= float64(len(v))
	std := math.Sqrt(variance + 1e-5)
	out := make(vecmath.Vector, len(v))
	for i, x := range v {
		out[i] = float32((float64(x) - mean) / std)
	}
	return out
}
