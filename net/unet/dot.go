package unet

import "github.com/klauspost/cpuid/v2"

// axpy and dot are the two hot kernels behind the convolution loops. The
// unrolled variants are selected once at init when the CPU carries wide
// vector units.
var axpy func(dst, src []float32, a float32)
var dot func(a, b []float32) float32

func init() {
	if cpuid.CPU.Supports(cpuid.AVX2) || cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ) {
		axpy = axpyUnrolled8
		dot = dotUnrolled8
	} else {
		axpy = axpyGeneric
		dot = dotGeneric
	}
}

func axpyGeneric(dst, src []float32, a float32) {
	for i := range dst {
		dst[i] += a * src[i]
	}
}

func dotGeneric(a, b []float32) (s float32) {
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func axpyUnrolled8(dst, src []float32, a float32) {
	n := len(dst) &^ 7
	for i := 0; i < n; i += 8 {
		d := dst[i : i+8 : i+8]
		s := src[i : i+8 : i+8]
		d[0] += a * s[0]
		d[1] += a * s[1]
		d[2] += a * s[2]
		d[3] += a * s[3]
		d[4] += a * s[4]
		d[5] += a * s[5]
		d[6] += a * s[6]
		d[7] += a * s[7]
	}
	for i := n; i < len(dst); i++ {
		dst[i] += a * src[i]
	}
}

func dotUnrolled8(a, b []float32) float32 {
	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	n := len(a) &^ 7
	for i := 0; i < n; i += 8 {
		x := a[i : i+8 : i+8]
		y := b[i : i+8 : i+8]
		s0 += x[0] * y[0]
		s1 += x[1] * y[1]
		s2 += x[2] * y[2]
		s3 += x[3] * y[3]
		s4 += x[4] * y[4]
		s5 += x[5] * y[5]
		s6 += x[6] * y[6]
		s7 += x[7] * y[7]
	}
	s := s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7
	for i := n; i < len(a); i++ {
		s += a[i] * b[i]
	}
	return s
}
