package aligner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stablecanvas/aesthetic/v1/encoder"
	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/metrics"
	"github.com/stablecanvas/aesthetic/v1/tracer"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// Request carries one alignment job. The caller (the session) has already
// decided that alignment should run; zero-work fast paths live there.
type Request struct {
	// Tokens is the host's tokenized prompt batch.
	Tokens encoder.TokenBatch

	// Target is the stored aesthetic embedding, unit-normalized.
	Target vecmath.Vector

	// Steps and LearningRate bound the optimization loop.
	Steps        int
	LearningRate float64

	// RotationText optionally shifts the target before optimization.
	RotationText     string
	RotationNegative bool
	RotationAngle    float64

	// StopAtLayers selects the hidden-state extraction point (1 = last).
	StopAtLayers int
}

// Result is an alignment outcome.
type Result struct {
	// Conditioning is the adjusted tensor, same shape as the host's
	// token layout implies.
	Conditioning vecmath.Conditioning

	// FinalSimilarity is the mean cosine similarity between the clone's
	// text embeddings and the target after the last step.
	FinalSimilarity float64

	// StepsRun is the number of optimizer steps executed.
	StepsRun int
}

// Aligner runs bounded gradient alignment against a cloneable text tower.
type Aligner struct {
	log     *logger.LoggerClient
	metrics *metrics.Metrics
}

// NewAligner builds an Aligner. The metrics instance may be nil.
func NewAligner(log *logger.LoggerClient, m *metrics.Metrics) *Aligner {
	return &Aligner{log: log, metrics: m}
}

// Align clones source's text tower, optimizes the clone toward req.Target,
// and returns the adjusted conditioning extracted from the clone. The base
// tower behind source is never modified; the clone is released before Align
// returns, on success and on failure alike.
func (a *Aligner) Align(ctx context.Context, source encoder.Cloneable, req Request) (res *Result, err error) {
	ctx, span := otel.Tracer("aesthetic/aligner").Start(ctx, "Align")
	defer span.End()
	defer func() { tracer.RecordErrorOnSpan(span, err) }()
	span.SetAttributes(
		attribute.Int("steps", req.Steps),
		attribute.Float64("learning_rate", req.LearningRate),
	)
	start := time.Now()
	defer a.metrics.ObserveAlignmentDuration(start)

	if len(req.Tokens) == 0 {
		a.metrics.CountAlignmentRun("failed")
		return nil, ErrEmptyBatch
	}
	if len(req.Target) == 0 {
		a.metrics.CountAlignmentRun("failed")
		return nil, ErrNoTarget
	}
	if source == nil {
		a.metrics.CountAlignmentRun("failed")
		return nil, encoder.ErrModelUnavailable
	}

	clone, err := source.CloneTextTower()
	if err != nil {
		a.metrics.CountAlignmentRun("failed")
		return nil, fmt.Errorf("aligner: cloning text tower: %w", err)
	}
	defer clone.Release()

	res, err = a.alignOnClone(ctx, clone, req)
	if err != nil {
		a.metrics.CountAlignmentRun("failed")
		return nil, err
	}
	a.metrics.CountAlignmentRun("adjusted")
	a.metrics.CountAlignmentSteps(res.StepsRun)
	a.log.Debug("alignment finished", nil, map[string]interface{}{
		"steps":      res.StepsRun,
		"similarity": res.FinalSimilarity,
	})
	return res, nil
}

func (a *Aligner) alignOnClone(ctx context.Context, clone encoder.TrainableTextTower, req Request) (*Result, error) {
	if dim := clone.Dimension(); len(req.Target) != dim {
		return nil, fmt.Errorf("aligner: target has %d values, tower expects %d: %w", len(req.Target), dim, vecmath.ErrShapeMismatch)
	}

	target, err := a.resolveTarget(ctx, clone, req)
	if err != nil {
		return nil, err
	}

	chunked, counts := chunkTokens(req.Tokens, clone.ChunkLen())

	opt := newAdam(clone.Parameters(), req.LearningRate)
	var finalSim float64
	for step := 0; step < req.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		opt.ZeroGrad()

		out, err := clone.Forward(chunked)
		if err != nil {
			return nil, fmt.Errorf("aligner: step %d forward: %w", step, err)
		}
		grad, meanSim, err := similarityGradient(out, target)
		if err != nil {
			return nil, fmt.Errorf("aligner: step %d: %w", step, err)
		}
		finalSim = meanSim

		if err := clone.Backward(grad); err != nil {
			return nil, fmt.Errorf("aligner: step %d backward: %w", step, err)
		}
		opt.Step()
	}

	// One more forward to report the post-update similarity and to make
	// sure the loop did not blow the parameters up.
	out, err := clone.Forward(chunked)
	if err != nil {
		return nil, fmt.Errorf("aligner: final forward: %w", err)
	}
	if err := vecmath.FiniteBatch(out); err != nil {
		return nil, fmt.Errorf("aligner: optimization diverged: %w", err)
	}
	if _, finalSim, err = similarityGradient(out, target); err != nil {
		return nil, fmt.Errorf("aligner: final similarity: %w", err)
	}

	states, err := clone.HiddenStates(chunked, req.StopAtLayers)
	if err != nil {
		return nil, fmt.Errorf("aligner: extracting hidden states: %w", err)
	}
	cond := reassemble(states, counts)
	for _, seq := range cond {
		for _, row := range seq {
			if err := vecmath.FiniteVector(row); err != nil {
				return nil, fmt.Errorf("aligner: conditioning: %w", err)
			}
		}
	}

	return &Result{
		Conditioning:    cond,
		FinalSimilarity: finalSim,
		StepsRun:        req.Steps,
	}, nil
}

// resolveTarget applies the optional rotation-text shift to the stored
// embedding. The returned vector is fixed for the whole optimization.
func (a *Aligner) resolveTarget(ctx context.Context, clone encoder.TrainableTextTower, req Request) (vecmath.Vector, error) {
	target, err := vecmath.Normalize(req.Target)
	if err != nil {
		return nil, fmt.Errorf("aligner: target embedding: %w", err)
	}
	if req.RotationText == "" {
		return target, nil
	}

	secondary, err := clone.EncodeText(ctx, req.RotationText)
	if err != nil {
		return nil, fmt.Errorf("aligner: encoding rotation text: %w", err)
	}
	if req.RotationNegative {
		diff := make(vecmath.Vector, len(target))
		for i := range target {
			diff[i] = target[i] - secondary[i]
		}
		if secondary, err = vecmath.Normalize(diff); err != nil {
			return nil, fmt.Errorf("aligner: negative rotation collapsed: %w", err)
		}
	}

	rotated, err := vecmath.Slerp(vecmath.Batch{target}, vecmath.Batch{secondary}, req.RotationAngle)
	if err != nil {
		return nil, fmt.Errorf("aligner: rotating target: %w", err)
	}
	return rotated[0], nil
}

// similarityGradient computes the mean cosine similarity of the rows against
// target and the gradient of loss = -mean(similarity) with respect to the
// raw (pre-normalization) rows.
//
// For a row z with u = z/|z| and unit target t:
//
//	d(u·t)/dz = (t - (u·t)u)/|z|
//
// so the per-row loss gradient is -(t - (u·t)u)/(batch·|z|).
func similarityGradient(out vecmath.Batch, target vecmath.Vector) (vecmath.Batch, float64, error) {
	if err := vecmath.FiniteBatch(out); err != nil {
		return nil, 0, err
	}
	grad := make(vecmath.Batch, len(out))
	var meanSim float64
	batch := float64(len(out))
	for i, z := range out {
		n := vecmath.Norm(z)
		if n == 0 {
			// A collapsed embedding cannot be normalized; surface it as
			// instability rather than dividing by zero.
			return nil, 0, fmt.Errorf("row %d collapsed to zero: %w", i, vecmath.ErrNotFinite)
		}
		var sim float64
		for j := range z {
			sim += (float64(z[j]) / n) * float64(target[j])
		}
		meanSim += sim / batch

		g := make(vecmath.Vector, len(z))
		for j := range z {
			u := float64(z[j]) / n
			g[j] = float32(-(float64(target[j]) - sim*u) / (n * batch))
		}
		grad[i] = g
	}
	if err := vecmath.FiniteBatch(grad); err != nil {
		return nil, 0, err
	}
	return grad, meanSim, nil
}

// chunkTokens splits each token row into pieces of at most chunkLen and
// flattens the pieces into one batch. counts[i] is the number of pieces the
// i-th original row produced, which reassemble uses to restore the layout.
func chunkTokens(tokens encoder.TokenBatch, chunkLen int) (encoder.TokenBatch, []int) {
	if chunkLen < 1 {
		chunkLen = 1
	}
	var chunked encoder.TokenBatch
	counts := make([]int, len(tokens))
	for i, row := range tokens {
		if len(row) == 0 {
			counts[i] = 0
			continue
		}
		for start := 0; start < len(row); start += chunkLen {
			end := start + chunkLen
			if end > len(row) {
				end = len(row)
			}
			chunked = append(chunked, row[start:end])
			counts[i]++
		}
	}
	return chunked, counts
}

// reassemble concatenates each original row's chunk outputs along the
// sequence axis in original order.
func reassemble(states vecmath.Conditioning, counts []int) vecmath.Conditioning {
	out := make(vecmath.Conditioning, len(counts))
	pos := 0
	for i, count := range counts {
		var seq []vecmath.Vector
		for c := 0; c < count; c++ {
			seq = append(seq, states[pos]...)
			pos++
		}
		out[i] = seq
	}
	return out
}
