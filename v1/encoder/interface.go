package encoder

import (
	"context"

	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// TokenBatch is a batch of tokenized prompts, one row of token ids per
// prompt. Rows arrive already truncated and padded by the host's
// emphasis-handling rules.
type TokenBatch = [][]int64

// Parameter is one named tensor of a trainable tower, flattened to a float32
// slice, with a same-shaped gradient accumulator.
type Parameter struct {
	Name string
	Data []float32
	Grad []float32
}

// ZeroGrad clears the accumulated gradient.
func (p *Parameter) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// VisionEncoder maps encoded image bytes into the shared embedding space.
type VisionEncoder interface {
	// EncodeImages returns one embedding row per input image. Decoding the
	// image payloads (png/jpeg/...) is the encoder's concern.
	EncodeImages(ctx context.Context, images [][]byte) (vecmath.Batch, error)
}

// TextTower is the text side of the encoder.
type TextTower interface {
	// EncodeText tokenizes and encodes a single text into one embedding
	// vector. Used for rotation text.
	EncodeText(ctx context.Context, text string) (vecmath.Vector, error)

	// ChunkLen is the tower's fixed token window (77 for CLIP-style towers).
	ChunkLen() int

	// Dimension is the width of the shared embedding space.
	Dimension() int
}

// Cloneable produces disposable, independently-optimizable copies of the
// text tower.
type Cloneable interface {
	CloneTextTower() (TrainableTextTower, error)
}

// TrainableTextTower is a working copy of the text tower whose parameters can
// be optimized without touching the base model.
type TrainableTextTower interface {
	TextTower

	// Forward runs the tower over a token batch and returns the pooled,
	// projected (pre-normalization) embedding per row.
	Forward(tokens TokenBatch) (vecmath.Batch, error)

	// Backward takes the gradient of the loss with respect to Forward's
	// output for the most recent Forward call and accumulates parameter
	// gradients. Must be preceded by Forward on the same token batch.
	Backward(grad vecmath.Batch) error

	// HiddenStates runs the tower and returns the per-position hidden state
	// used for conditioning, shape [batch, seq, D]. stopAtLayers selects the
	// extraction point: 1 means the final hidden state; k > 1 means the
	// k-th-from-last layer's output followed by the tower's trailing layer
	// normalization.
	HiddenStates(tokens TokenBatch, stopAtLayers int) (vecmath.Conditioning, error)

	// Parameters exposes the clone's trainable tensors for the optimizer.
	Parameters() []*Parameter

	// Release frees the clone's resources. Safe to call more than once.
	Release()
}

// Capability is the full encoder surface the pipeline consumes.
type Capability interface {
	VisionEncoder
	TextTower
	Cloneable

	// ID identifies the loaded model (name or path). The Provider compares
	// it against the requested identity to decide whether to reload.
	ID() string

	// Release frees the capability's resources when the Provider swaps it
	// out for a different model.
	Release()
}

// LoadFunc loads the encoder capability for a model identity. Supplied by
// the host application.
type LoadFunc func(ctx context.Context, modelID string) (Capability, error)
