package vecmath

import (
	"fmt"
	"math"
)

// parallelSineEps is the threshold below which sin(omega) is treated as zero
// and spherical interpolation falls back to linear interpolation for that row.
const parallelSineEps = 1e-6

// Norm returns the L2 norm of v, accumulated in float64.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a new unit-length copy of v.
// Returns ErrDegenerateVector if the norm of v is numerically zero.
func Normalize(v Vector) (Vector, error) {
	n := Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("norm %v: %w", n, ErrDegenerateVector)
	}
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out, nil
}

// Cosine computes the cosine similarity between a and b.
// Returns ErrShapeMismatch for different lengths and ErrDegenerateVector if
// either vector has zero norm.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine %d vs %d: %w", len(a), len(b), ErrShapeMismatch)
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, ErrDegenerateVector
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Mean returns the arithmetic mean of the rows, one Vector of the rows'
// common dimension. Accumulates in float64 so large sample counts do not
// drift.
func Mean(rows Batch) (Vector, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("mean of empty batch: %w", ErrShapeMismatch)
	}
	dim := len(rows[0])
	acc := make([]float64, dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("mean: row %d has %d values, want %d: %w", i, len(row), dim, ErrShapeMismatch)
		}
		for j, x := range row {
			acc[j] += float64(x)
		}
	}
	out := make(Vector, dim)
	for j, s := range acc {
		out[j] = float32(s / float64(len(rows)))
	}
	return out, nil
}

// Lerp linearly interpolates each row: (1-t)*low + t*high.
func Lerp(low, high Batch, t float64) (Batch, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("lerp: %d vs %d rows: %w", len(low), len(high), ErrShapeMismatch)
	}
	out := make(Batch, len(low))
	for i := range low {
		row, err := lerpRow(low[i], high[i], t)
		if err != nil {
			return nil, fmt.Errorf("lerp: row %d: %w", i, err)
		}
		out[i] = row
	}
	return out, nil
}

// Slerp spherically interpolates each row of low toward the matching row of
// high. The arc angle comes from the normalized rows; the raw rows are what
// get combined, so input magnitudes survive interpolation. Rows whose sine is
// numerically zero (parallel or antiparallel) fall back to Lerp.
func Slerp(low, high Batch, t float64) (Batch, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("slerp: %d vs %d rows: %w", len(low), len(high), ErrShapeMismatch)
	}
	out := make(Batch, len(low))
	for i := range low {
		row, err := slerpRow(low[i], high[i], t)
		if err != nil {
			return nil, fmt.Errorf("slerp: row %d: %w", i, err)
		}
		out[i] = row
	}
	return out, nil
}

// SlerpConditioning applies Slerp per [batch][seq] position of two
// same-shaped conditioning tensors.
func SlerpConditioning(low, high Conditioning, t float64) (Conditioning, error) {
	return combineConditioning(low, high, t, slerpRow)
}

// LerpConditioning applies Lerp per [batch][seq] position of two same-shaped
// conditioning tensors.
func LerpConditioning(low, high Conditioning, t float64) (Conditioning, error) {
	return combineConditioning(low, high, t, lerpRow)
}

func combineConditioning(low, high Conditioning, t float64, combine func(Vector, Vector, float64) (Vector, error)) (Conditioning, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("conditioning: %d vs %d prompts: %w", len(low), len(high), ErrShapeMismatch)
	}
	out := make(Conditioning, len(low))
	for i := range low {
		if len(low[i]) != len(high[i]) {
			return nil, fmt.Errorf("conditioning: prompt %d: %d vs %d positions: %w", i, len(low[i]), len(high[i]), ErrShapeMismatch)
		}
		out[i] = make([]Vector, len(low[i]))
		for j := range low[i] {
			row, err := combine(low[i][j], high[i][j], t)
			if err != nil {
				return nil, fmt.Errorf("conditioning: prompt %d position %d: %w", i, j, err)
			}
			out[i][j] = row
		}
	}
	return out, nil
}

func lerpRow(low, high Vector, t float64) (Vector, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("%d vs %d values: %w", len(low), len(high), ErrShapeMismatch)
	}
	out := make(Vector, len(low))
	for i := range low {
		out[i] = float32((1-t)*float64(low[i]) + t*float64(high[i]))
	}
	return out, nil
}

func slerpRow(low, high Vector, t float64) (Vector, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("%d vs %d values: %w", len(low), len(high), ErrShapeMismatch)
	}
	nl := Norm(low)
	nh := Norm(high)
	if nl == 0 || nh == 0 {
		return nil, ErrDegenerateVector
	}

	var dot float64
	for i := range low {
		dot += (float64(low[i]) / nl) * (float64(high[i]) / nh)
	}
	// acos is only defined on [-1,1]; float32 rounding can push the dot of
	// two unit rows just past either end.
	dot = math.Max(-1, math.Min(1, dot))

	omega := math.Acos(dot)
	so := math.Sin(omega)
	if math.Abs(so) < parallelSineEps {
		return lerpRow(low, high, t)
	}

	cl := math.Sin((1-t)*omega) / so
	ch := math.Sin(t*omega) / so
	out := make(Vector, len(low))
	for i := range low {
		out[i] = float32(cl*float64(low[i]) + ch*float64(high[i]))
	}
	return out, nil
}

// FiniteVector reports ErrNotFinite if any value of v is NaN or Inf.
func FiniteVector(v Vector) error {
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("value %v at index %d: %w", x, i, ErrNotFinite)
		}
	}
	return nil
}

// FiniteBatch reports ErrNotFinite if any row of b contains NaN or Inf.
func FiniteBatch(b Batch) error {
	for i, row := range b {
		if err := FiniteVector(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}
