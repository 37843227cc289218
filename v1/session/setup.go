package session

import (
	"context"
	"fmt"

	"github.com/stablecanvas/aesthetic/v1/aligner"
	"github.com/stablecanvas/aesthetic/v1/embeddingstore"
	"github.com/stablecanvas/aesthetic/v1/encoder"
	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// Params is one generation request's aesthetic configuration.
type Params struct {
	// Weight blends the aligned conditioning into the baseline, 0..1.
	Weight float64

	// Steps bounds the optimization loop; 0 disables alignment.
	Steps int

	// LearningRate for the per-request optimizer; 0 disables alignment.
	LearningRate float64

	// EmbeddingName selects the stored aesthetic embedding. Empty or the
	// store sentinel means no embedding.
	EmbeddingName string

	// UseSlerp selects spherical over linear blending.
	UseSlerp bool

	// RotationText optionally shifts the optimization target; see the
	// aligner package.
	RotationText     string
	RotationNegative bool
	RotationAngle    float64

	// StopAtLayers is the host's hidden-state layer selection (1 = last).
	StopAtLayers int
}

// Session carries one request's configuration and the lazily loaded target
// embedding. Not safe for concurrent use.
type Session struct {
	cfg      Config
	provider *encoder.Provider
	store    embeddingstore.Store
	aligner  *aligner.Aligner
	log      *logger.LoggerClient

	params Params
	skip   bool

	// loadedName/loadedEmb implement the identity-checked lazy load: the
	// embedding is re-read only when the configured name changes.
	loadedName string
	loadedEmb  vecmath.Vector

	applied map[string]interface{}
}

// NewSession builds a Session bound to the shared provider, store, and
// aligner.
func NewSession(cfg Config, provider *encoder.Provider, store embeddingstore.Store, al *aligner.Aligner, log *logger.LoggerClient) *Session {
	return &Session{
		cfg:      cfg,
		provider: provider,
		store:    store,
		aligner:  al,
		log:      log,
	}
}

// SetParams installs the configuration for the next request. The named
// embedding is resolved immediately; an unknown name fails with the store's
// ErrNotFound and leaves the previous configuration untouched.
func (s *Session) SetParams(ctx context.Context, p Params) error {
	name := p.EmbeddingName
	if name == embeddingstore.SentinelNone {
		name = ""
	}
	if p.StopAtLayers < 1 {
		p.StopAtLayers = 1
	}

	if name == "" {
		s.params = p
		s.loadedName = ""
		s.loadedEmb = nil
		s.applied = nil
		return nil
	}

	if name != s.loadedName {
		raw, err := s.store.Resolve(ctx, name)
		if err != nil {
			return err
		}
		unit, err := vecmath.Normalize(raw)
		if err != nil {
			return fmt.Errorf("session: embedding %q: %w", name, err)
		}
		s.loadedName = name
		s.loadedEmb = unit
	}

	s.params = p
	s.applied = map[string]interface{}{
		"Aesthetic embedding":     name,
		"Aesthetic weight":        p.Weight,
		"Aesthetic steps":         p.Steps,
		"Aesthetic LR":            p.LearningRate,
		"Aesthetic slerp":         p.UseSlerp,
		"Aesthetic text":          p.RotationText,
		"Aesthetic text negative": p.RotationNegative,
		"Aesthetic slerp angle":   p.RotationAngle,
	}
	return nil
}

// SetSkip forces or clears the no-op fast path independently of the rest of
// the configuration.
func (s *Session) SetSkip(skip bool) {
	s.skip = skip
}

// AppliedParams reports the configuration active for the current request,
// for the host's generation-metadata surface. Nil when no embedding is
// selected.
func (s *Session) AppliedParams() map[string]interface{} {
	return s.applied
}

// shouldSkip is the single guarded fast-path decision for Apply.
func (s *Session) shouldSkip() bool {
	return s.skip ||
		s.params.Steps == 0 ||
		s.params.LearningRate == 0 ||
		s.params.Weight == 0 ||
		s.loadedEmb == nil
}

// Apply transforms one prompt batch's conditioning. On the fast path the
// input is returned unchanged; otherwise the aligned conditioning is blended
// into cond at the configured weight. The result always matches cond's
// shape.
func (s *Session) Apply(ctx context.Context, cond vecmath.Conditioning, tokens encoder.TokenBatch) (vecmath.Conditioning, error) {
	if s.shouldSkip() {
		return cond, nil
	}

	capability, err := s.provider.Acquire(ctx, s.cfg.ModelID)
	if err != nil {
		return nil, err
	}

	res, err := s.aligner.Align(ctx, capability, aligner.Request{
		Tokens:           tokens,
		Target:           s.loadedEmb,
		Steps:            s.params.Steps,
		LearningRate:     s.params.LearningRate,
		RotationText:     s.params.RotationText,
		RotationNegative: s.params.RotationNegative,
		RotationAngle:    s.params.RotationAngle,
		StopAtLayers:     s.params.StopAtLayers,
	})
	if err != nil {
		return nil, err
	}

	var blended vecmath.Conditioning
	if s.params.UseSlerp {
		blended, err = vecmath.SlerpConditioning(cond, res.Conditioning, s.params.Weight)
	} else {
		blended, err = vecmath.LerpConditioning(cond, res.Conditioning, s.params.Weight)
	}
	if err != nil {
		return nil, fmt.Errorf("session: blending adjusted conditioning: %w", err)
	}

	s.log.Debug("conditioning adjusted", nil, map[string]interface{}{
		"embedding":  s.loadedName,
		"steps":      res.StepsRun,
		"similarity": res.FinalSimilarity,
		"weight":     s.params.Weight,
	})
	return blended, nil
}
