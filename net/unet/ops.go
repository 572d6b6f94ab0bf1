package unet

import (
	"github.com/bayronik/emulator/parallel"
	"github.com/bayronik/emulator/tensor"
)

// The only convolution this net uses: 3x3 kernel, stride 1, pad 1, so every
// layer preserves the map height and width.
const (
	KernelSize = 3
	Pad        = 1
)

// Conv2D applies a 3x3 stride-1 pad-1 convolution to an NCHW batch.
// w is laid out (outC, inC, 3, 3) and b holds one bias per output channel.
// The same kernel executes traced portable graphs, which keeps exported
// output numerically identical to the live model's.
func Conv2D(x *tensor.Tensor, w, b []float32, outC, workers int) *tensor.Tensor {
	batch, inC, h, width := x.Dim(0), x.Dim(1), x.Dim(2), x.Dim(3)
	y := tensor.New(batch, outC, h, width)

	parallel.ForEach(batch*outC, workers, func(i int) {
		bi, oc := i/outC, i%outC
		out := y.Data[(bi*outC+oc)*h*width : (bi*outC+oc+1)*h*width]
		for p := range out {
			out[p] = b[oc]
		}
		for ic := 0; ic < inC; ic++ {
			in := x.Data[(bi*inC+ic)*h*width : (bi*inC+ic+1)*h*width]
			for ky := 0; ky < KernelSize; ky++ {
				for kx := 0; kx < KernelSize; kx++ {
					wv := w[((oc*inC+ic)*KernelSize+ky)*KernelSize+kx]
					forEachRow(h, width, ky, kx, func(orow, irow, xs, xe int) {
						axpy(out[orow+xs:orow+xe], in[irow+xs+kx-Pad:irow+xe+kx-Pad], wv)
					})
				}
			}
		}
	})
	return y
}

// ReLU returns max(0, x) element-wise in a fresh tensor.
func ReLU(x *tensor.Tensor) *tensor.Tensor {
	y := x.Clone()
	for i, v := range y.Data {
		if v < 0 {
			y.Data[i] = 0
		}
	}
	return y
}

// forEachRow visits every output row reached by kernel offset (ky,kx),
// yielding the output row offset, the matching input row offset and the
// in-bounds column range [xs,xe).
func forEachRow(h, w, ky, kx int, visit func(orow, irow, xs, xe int)) {
	xs := 0
	if kx < Pad {
		xs = Pad - kx
	}
	xe := w
	if kx > Pad {
		xe = w + Pad - kx
	}
	if xs >= xe {
		return
	}
	for oy := 0; oy < h; oy++ {
		iy := oy + ky - Pad
		if iy < 0 || iy >= h {
			continue
		}
		visit(oy*w, iy*w, xs, xe)
	}
}
