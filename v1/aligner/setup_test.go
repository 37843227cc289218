package aligner

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablecanvas/aesthetic/v1/encoder"
	"github.com/stablecanvas/aesthetic/v1/encoder/lineartower"
	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

const testDim = 16

func testTarget(t *testing.T) vecmath.Vector {
	t.Helper()
	raw := make(vecmath.Vector, testDim)
	for i := range raw {
		raw[i] = float32(math.Sin(float64(i) + 1))
	}
	unit, err := vecmath.Normalize(raw)
	require.NoError(t, err)
	return unit
}

func newTestAligner() *Aligner {
	return NewAligner(logger.NewNop(), nil)
}

func TestAlign_EmptyBatch(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	_, err := newTestAligner().Align(context.Background(), tower, Request{
		Target: testTarget(t),
		Steps:  3,
	})
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestAlign_NoTarget(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	_, err := newTestAligner().Align(context.Background(), tower, Request{
		Tokens: encoder.TokenBatch{{1, 2}},
		Steps:  3,
	})
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestAlign_NilSource(t *testing.T) {
	_, err := newTestAligner().Align(context.Background(), nil, Request{
		Tokens: encoder.TokenBatch{{1, 2}},
		Target: testTarget(t),
		Steps:  3,
	})
	assert.ErrorIs(t, err, encoder.ErrModelUnavailable)
}

func TestAlign_TargetDimensionMismatch(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	_, err := newTestAligner().Align(context.Background(), tower, Request{
		Tokens: encoder.TokenBatch{{1, 2}},
		Target: vecmath.Vector{1, 0},
		Steps:  1,
	})
	assert.ErrorIs(t, err, vecmath.ErrShapeMismatch)
}

func TestAlign_BaseTowerUntouched(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim, Seed: 11})
	var before []float32
	for _, p := range tower.Parameters() {
		before = append(before, p.Data...)
	}

	_, err := newTestAligner().Align(context.Background(), tower, Request{
		Tokens:       encoder.TokenBatch{{1, 2, 3}},
		Target:       testTarget(t),
		Steps:        10,
		LearningRate: 0.01,
		StopAtLayers: 1,
	})
	require.NoError(t, err)

	var after []float32
	for _, p := range tower.Parameters() {
		after = append(after, p.Data...)
	}
	assert.Equal(t, before, after, "optimizing the clone leaked into the base tower")
}

func TestAlign_MonotonicImprovement(t *testing.T) {
	// More steps at a small learning rate must not end up less similar.
	target := testTarget(t)
	tokens := encoder.TokenBatch{{3, 14, 15}, {9, 26}}

	var sims []float64
	for _, steps := range []int{1, 5, 20} {
		tower := lineartower.New(lineartower.Config{Dimension: testDim, Seed: 12})
		res, err := newTestAligner().Align(context.Background(), tower, Request{
			Tokens:       tokens,
			Target:       target,
			Steps:        steps,
			LearningRate: 0.005,
			StopAtLayers: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, steps, res.StepsRun)
		sims = append(sims, res.FinalSimilarity)
	}

	assert.GreaterOrEqual(t, sims[1], sims[0], "5 steps vs 1 step")
	assert.GreaterOrEqual(t, sims[2], sims[1], "20 steps vs 5 steps")
}

func TestAlign_OutputShapeMatchesTokens(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	tokens := encoder.TokenBatch{{1, 2, 3, 4}, {5, 6}}

	res, err := newTestAligner().Align(context.Background(), tower, Request{
		Tokens:       tokens,
		Target:       testTarget(t),
		Steps:        1,
		LearningRate: 0.001,
		StopAtLayers: 1,
	})
	require.NoError(t, err)
	require.Len(t, res.Conditioning, 2)
	assert.Len(t, res.Conditioning[0], 4)
	assert.Len(t, res.Conditioning[1], 2)
	assert.Len(t, res.Conditioning[0][0], testDim)
}

func TestAlign_LongPromptReassembly(t *testing.T) {
	// A 10-token row over a 4-token window spans three chunks; the output
	// must come back as a single 10-position sequence.
	tower := lineartower.New(lineartower.Config{Dimension: testDim, ChunkLen: 4})
	row := make([]int64, 10)
	for i := range row {
		row[i] = int64(i + 1)
	}

	res, err := newTestAligner().Align(context.Background(), tower, Request{
		Tokens:       encoder.TokenBatch{row},
		Target:       testTarget(t),
		Steps:        2,
		LearningRate: 0.001,
		StopAtLayers: 1,
	})
	require.NoError(t, err)
	require.Len(t, res.Conditioning, 1)
	assert.Len(t, res.Conditioning[0], 10)
}

func TestAlign_Divergence(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	_, err := newTestAligner().Align(context.Background(), tower, Request{
		Tokens:       encoder.TokenBatch{{1, 2}},
		Target:       testTarget(t),
		Steps:        1,
		LearningRate: 1e38,
		StopAtLayers: 1,
	})
	assert.ErrorIs(t, err, vecmath.ErrNotFinite)
}

func TestResolveTarget_NoRotation(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	clone, err := tower.CloneTextTower()
	require.NoError(t, err)
	defer clone.Release()

	target := testTarget(t)
	got, err := newTestAligner().resolveTarget(context.Background(), clone, Request{Target: target})
	require.NoError(t, err)
	for i := range target {
		assert.InDelta(t, target[i], got[i], 1e-6)
	}
}

func TestResolveTarget_RotationShiftsTarget(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	clone, err := tower.CloneTextTower()
	require.NoError(t, err)
	defer clone.Release()

	target := testTarget(t)
	rotated, err := newTestAligner().resolveTarget(context.Background(), clone, Request{
		Target:        target,
		RotationText:  "oil painting",
		RotationAngle: 0.5,
	})
	require.NoError(t, err)

	var diff float64
	for i := range target {
		diff += math.Abs(float64(rotated[i]) - float64(target[i]))
	}
	assert.Greater(t, diff, 1e-4, "rotation left the target unchanged")
}

func TestResolveTarget_FullAngleReachesSecondary(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	clone, err := tower.CloneTextTower()
	require.NoError(t, err)
	defer clone.Release()

	secondary, err := clone.EncodeText(context.Background(), "oil painting")
	require.NoError(t, err)

	got, err := newTestAligner().resolveTarget(context.Background(), clone, Request{
		Target:        testTarget(t),
		RotationText:  "oil painting",
		RotationAngle: 1,
	})
	require.NoError(t, err)
	for i := range secondary {
		assert.InDelta(t, secondary[i], got[i], 1e-4)
	}
}

func TestResolveTarget_NegativeRotationIsUnit(t *testing.T) {
	tower := lineartower.New(lineartower.Config{Dimension: testDim})
	clone, err := tower.CloneTextTower()
	require.NoError(t, err)
	defer clone.Release()

	got, err := newTestAligner().resolveTarget(context.Background(), clone, Request{
		Target:           testTarget(t),
		RotationText:     "oil painting",
		RotationNegative: true,
		RotationAngle:    1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1, vecmath.Norm(got), 1e-5)
}

func TestSimilarityGradient_FiniteDifference(t *testing.T) {
	target := vecmath.Vector{0.6, 0.8}
	z := vecmath.Vector{1.5, -0.5}

	grad, _, err := similarityGradient(vecmath.Batch{z}, target)
	require.NoError(t, err)

	simAt := func(v vecmath.Vector) float64 {
		sim, err := vecmath.Cosine(v, target)
		require.NoError(t, err)
		return sim
	}
	const eps = 1e-3
	for j := range z {
		probe := append(vecmath.Vector(nil), z...)
		probe[j] += eps
		numeric := -(simAt(probe) - simAt(z)) / eps
		assert.InDelta(t, numeric, float64(grad[0][j]), 1e-3, "component %d", j)
	}
}

func TestSimilarityGradient_CollapsedRow(t *testing.T) {
	_, _, err := similarityGradient(vecmath.Batch{{0, 0}}, vecmath.Vector{1, 0})
	assert.ErrorIs(t, err, vecmath.ErrNotFinite)
}

func TestChunkTokens(t *testing.T) {
	tokens := encoder.TokenBatch{
		{1, 2, 3, 4, 5},
		{6},
	}
	chunked, counts := chunkTokens(tokens, 2)
	assert.Equal(t, []int{3, 1}, counts)
	require.Len(t, chunked, 4)
	assert.Equal(t, []int64{1, 2}, chunked[0])
	assert.Equal(t, []int64{5}, chunked[2])
	assert.Equal(t, []int64{6}, chunked[3])
}
