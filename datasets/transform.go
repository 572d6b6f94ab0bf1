package datasets

import "math"

import "github.com/bayronik/emulator/tensor"

// Prepare turns a raw sample pair into model-ready tensors: log1p on both
// fields and a leading singleton channel axis, shape (1,H,W). It copies the
// raw data, so calling it repeatedly on the same pair is safe and yields
// bit-identical results.
func Prepare(raw RawPair) (in, tgt *tensor.Tensor) {
	in = tensor.FromSlice(log1p(raw.Input), 1, raw.Height, raw.Width)
	tgt = tensor.FromSlice(log1p(raw.Target), 1, raw.Height, raw.Width)
	return in, tgt
}

// PrepareInput prepares a single input field map for inference, without a
// paired target.
func PrepareInput(field []float32, h, w int) *tensor.Tensor {
	return tensor.FromSlice(log1p(field), 1, h, w)
}

func log1p(src []float32) []float32 {
	dst := make([]float32, len(src))
	for i, v := range src {
		dst[i] = float32(math.Log1p(float64(v)))
	}
	return dst
}
