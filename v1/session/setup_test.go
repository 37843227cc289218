package session

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablecanvas/aesthetic/v1/aligner"
	"github.com/stablecanvas/aesthetic/v1/embeddingstore"
	"github.com/stablecanvas/aesthetic/v1/encoder"
	"github.com/stablecanvas/aesthetic/v1/encoder/lineartower"
	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

const testDim = 16

func newTestSession(t *testing.T) (*Session, embeddingstore.Store) {
	t.Helper()
	store, err := embeddingstore.NewFSStore(embeddingstore.Config{Dir: t.TempDir()}, logger.NewNop())
	require.NoError(t, err)

	raw := make(vecmath.Vector, testDim)
	for i := range raw {
		raw[i] = float32(math.Cos(float64(i) + 0.5))
	}
	_, err = store.Register(context.Background(), "style", raw)
	require.NoError(t, err)

	provider := encoder.NewProvider(lineartower.Loader(lineartower.Config{Dimension: testDim}))
	al := aligner.NewAligner(logger.NewNop(), nil)
	sess := NewSession(Config{ModelID: "lineartower"}, provider, store, al, logger.NewNop())
	return sess, store
}

func testConditioning(batch, seq int) vecmath.Conditioning {
	cond := make(vecmath.Conditioning, batch)
	for i := range cond {
		cond[i] = make([]vecmath.Vector, seq)
		for j := range cond[i] {
			row := make(vecmath.Vector, testDim)
			for k := range row {
				row[k] = float32(math.Sin(float64(i*seq*testDim + j*testDim + k + 1)))
			}
			cond[i][j] = row
		}
	}
	return cond
}

func activeParams() Params {
	return Params{
		Weight:        0.8,
		Steps:         2,
		LearningRate:  0.001,
		EmbeddingName: "style",
		UseSlerp:      true,
		StopAtLayers:  1,
	}
}

func TestApply_NoParamsIsNoop(t *testing.T) {
	sess, _ := newTestSession(t)
	cond := testConditioning(1, 3)

	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, cond, got)
}

func TestApply_ZeroStepsIsNoop(t *testing.T) {
	sess, _ := newTestSession(t)
	p := activeParams()
	p.Steps = 0
	require.NoError(t, sess.SetParams(context.Background(), p))

	cond := testConditioning(1, 3)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, cond, got)
}

func TestApply_ZeroWeightIsNoopRegardlessOfSteps(t *testing.T) {
	sess, _ := newTestSession(t)
	p := activeParams()
	p.Weight = 0
	p.Steps = 20
	require.NoError(t, sess.SetParams(context.Background(), p))

	cond := testConditioning(2, 2)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, cond, got)
}

func TestApply_ZeroLearningRateIsNoop(t *testing.T) {
	sess, _ := newTestSession(t)
	p := activeParams()
	p.LearningRate = 0
	require.NoError(t, sess.SetParams(context.Background(), p))

	cond := testConditioning(1, 2)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, cond, got)
}

func TestApply_SkipForcesNoop(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))
	sess.SetSkip(true)

	cond := testConditioning(1, 2)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, cond, got)

	// Clearing skip re-enables adjustment without reconfiguring.
	sess.SetSkip(false)
	got, err = sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2}})
	require.NoError(t, err)
	assert.NotEqual(t, cond, got)
}

func TestApply_AdjustsConditioning(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))

	cond := testConditioning(2, 3)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	require.Len(t, got, 2)
	require.Len(t, got[0], 3)
	require.Len(t, got[0][0], testDim)
	assert.NotEqual(t, cond, got, "active session left the conditioning unchanged")
}

func TestApply_LerpBlending(t *testing.T) {
	sess, _ := newTestSession(t)
	p := activeParams()
	p.UseSlerp = false
	require.NoError(t, sess.SetParams(context.Background(), p))

	cond := testConditioning(1, 2)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{7, 8}})
	require.NoError(t, err)
	assert.NotEqual(t, cond, got)
}

func TestSetParams_UnknownEmbedding(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))

	p := activeParams()
	p.EmbeddingName = "missing"
	err := sess.SetParams(context.Background(), p)
	assert.ErrorIs(t, err, embeddingstore.ErrNotFound)

	// The previous configuration survives the failed reconfiguration.
	assert.Equal(t, "style", sess.loadedName)
	cond := testConditioning(1, 2)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2}})
	require.NoError(t, err)
	assert.NotEqual(t, cond, got)
}

func TestSetParams_NoneClearsTarget(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))

	p := activeParams()
	p.EmbeddingName = embeddingstore.SentinelNone
	require.NoError(t, sess.SetParams(context.Background(), p))
	assert.Nil(t, sess.AppliedParams())

	cond := testConditioning(1, 2)
	got, err := sess.Apply(context.Background(), cond, encoder.TokenBatch{{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, cond, got)
}

func TestSetParams_LazyLoadKeyedByName(t *testing.T) {
	sess, store := newTestSession(t)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))
	loaded := sess.loadedEmb

	// Overwrite the stored vector under the same name; the session must
	// keep the already loaded copy until the configured name changes.
	_, err := store.Register(context.Background(), "style", vecmath.Vector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	require.NoError(t, err)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))
	assert.Equal(t, loaded, sess.loadedEmb)
}

func TestSetParams_LoadedEmbeddingIsUnit(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))
	assert.InDelta(t, 1, vecmath.Norm(sess.loadedEmb), 1e-5)
}

func TestAppliedParams(t *testing.T) {
	sess, _ := newTestSession(t)
	require.NoError(t, sess.SetParams(context.Background(), activeParams()))

	applied := sess.AppliedParams()
	require.NotNil(t, applied)
	assert.Equal(t, "style", applied["Aesthetic embedding"])
	assert.Equal(t, 0.8, applied["Aesthetic weight"])
	assert.Equal(t, 2, applied["Aesthetic steps"])
}
