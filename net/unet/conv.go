package unet

import (
	"math"
	"math/rand"

	"github.com/bayronik/emulator/parallel"
	"github.com/bayronik/emulator/tensor"
)

// conv is one learnable 3x3 convolution layer.
type conv struct {
	name string
	inC  int
	outC int

	w  []float32 // (outC, inC, 3, 3)
	b  []float32 // (outC)
	gw []float32
	gb []float32

	optW *adam
	optB *adam

	in *tensor.Tensor // cached input, training mode only
}

func newConv(name string, inC, outC int, rng *rand.Rand) *conv {
	c := &conv{
		name: name,
		inC:  inC,
		outC: outC,
		w:    make([]float32, outC*inC*KernelSize*KernelSize),
		b:    make([]float32, outC),
		gw:   make([]float32, outC*inC*KernelSize*KernelSize),
		gb:   make([]float32, outC),
	}
	// He initialization for the ReLU stack
	scale := float32(math.Sqrt(2 / float64(inC*KernelSize*KernelSize)))
	for i := range c.w {
		c.w[i] = float32(rng.NormFloat64()) * scale
	}
	c.optW = newAdam(len(c.w))
	c.optB = newAdam(len(c.b))
	return c
}

func (c *conv) forward(x *tensor.Tensor, training bool, workers int) *tensor.Tensor {
	if training {
		c.in = x
	} else {
		c.in = nil
	}
	return Conv2D(x, c.w, c.b, c.outC, workers)
}

// backward consumes the upstream gradient and returns the gradient with
// respect to the cached input. Parameter gradients accumulate until
// zeroGrad.
func (c *conv) backward(dy *tensor.Tensor, workers int) *tensor.Tensor {
	x := c.in
	batch, h, w := x.Dim(0), x.Dim(2), x.Dim(3)
	plane := h * w

	// bias gradient, one output channel per worker
	parallel.ForEach(c.outC, workers, func(oc int) {
		var s float32
		for bi := 0; bi < batch; bi++ {
			row := dy.Data[(bi*c.outC+oc)*plane : (bi*c.outC+oc+1)*plane]
			for _, v := range row {
				s += v
			}
		}
		c.gb[oc] += s
	})

	// weight gradient, one (oc,ic) filter per worker
	parallel.ForEach(c.outC*c.inC, workers, func(i int) {
		oc, ic := i/c.inC, i%c.inC
		for ky := 0; ky < KernelSize; ky++ {
			for kx := 0; kx < KernelSize; kx++ {
				var s float32
				for bi := 0; bi < batch; bi++ {
					out := dy.Data[(bi*c.outC+oc)*plane : (bi*c.outC+oc+1)*plane]
					in := x.Data[(bi*c.inC+ic)*plane : (bi*c.inC+ic+1)*plane]
					forEachRow(h, w, ky, kx, func(orow, irow, xs, xe int) {
						s += dot(out[orow+xs:orow+xe], in[irow+xs+kx-Pad:irow+xe+kx-Pad])
					})
				}
				c.gw[((oc*c.inC+ic)*KernelSize+ky)*KernelSize+kx] += s
			}
		}
	})

	// input gradient, one (batch, ic) plane per worker
	dx := tensor.New(batch, c.inC, h, w)
	parallel.ForEach(batch*c.inC, workers, func(i int) {
		bi, ic := i/c.inC, i%c.inC
		din := dx.Data[(bi*c.inC+ic)*plane : (bi*c.inC+ic+1)*plane]
		for oc := 0; oc < c.outC; oc++ {
			out := dy.Data[(bi*c.outC+oc)*plane : (bi*c.outC+oc+1)*plane]
			for ky := 0; ky < KernelSize; ky++ {
				for kx := 0; kx < KernelSize; kx++ {
					wv := c.w[((oc*c.inC+ic)*KernelSize+ky)*KernelSize+kx]
					forEachRow(h, w, ky, kx, func(orow, irow, xs, xe int) {
						axpy(din[irow+xs+kx-Pad:irow+xe+kx-Pad], out[orow+xs:orow+xe], wv)
					})
				}
			}
		}
	})
	return dx
}

func (c *conv) step(lr float64) {
	c.optW.step(c.w, c.gw, lr)
	c.optB.step(c.b, c.gb, lr)
}

func (c *conv) zeroGrad() {
	for i := range c.gw {
		c.gw[i] = 0
	}
	for i := range c.gb {
		c.gb[i] = 0
	}
}
