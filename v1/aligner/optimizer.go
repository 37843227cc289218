package aligner

import (
	"math"

	"github.com/stablecanvas/aesthetic/v1/encoder"
)

// adam is a standard bias-corrected Adam optimizer over a clone's parameters.
type adam struct {
	params []*encoder.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64

	step int
	m    [][]float64
	v    [][]float64
}

func newAdam(params []*encoder.Parameter, lr float64) *adam {
	m := make([][]float64, len(params))
	v := make([][]float64, len(params))
	for i, p := range params {
		m[i] = make([]float64, len(p.Data))
		v[i] = make([]float64, len(p.Data))
	}
	return &adam{
		params: params,
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-8,
		m:      m,
		v:      v,
	}
}

// Step applies one Adam update from the accumulated gradients.
func (a *adam) Step() {
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))
	for i, p := range a.params {
		for j := range p.Data {
			g := float64(p.Grad[j])
			a.m[i][j] = a.beta1*a.m[i][j] + (1-a.beta1)*g
			a.v[i][j] = a.beta2*a.v[i][j] + (1-a.beta2)*g*g
			mHat := a.m[i][j] / c1
			vHat := a.v[i][j] / c2
			p.Data[j] -= float32(a.lr * mHat / (math.Sqrt(vHat) + a.eps))
		}
	}
}

// ZeroGrad clears every parameter's gradient accumulator.
func (a *adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}
