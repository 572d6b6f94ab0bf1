package unet

import "github.com/bayronik/emulator/tensor"

// Op is one recorded operation of a traced forward pass. The weight slices
// are copies, so the record stays valid after further training.
type Op struct {
	Kind        string // "conv2d" or "relu"
	InChannels  int
	OutChannels int
	Weight      []float32
	Bias        []float32
	OutShape    []int
}

// Trace executes one inference-mode forward pass on the probe and records
// every operation with its concrete output shape. The recorded sequence,
// replayed through the same kernels, reproduces Forward exactly.
func (n *Net) Trace(probe *tensor.Tensor) ([]Op, *tensor.Tensor) {
	var ops []Op
	h := probe
	for i, c := range n.convs {
		h = Conv2D(h, c.w, c.b, c.outC, n.workers)
		ops = append(ops, Op{
			Kind:        "conv2d",
			InChannels:  c.inC,
			OutChannels: c.outC,
			Weight:      append([]float32(nil), c.w...),
			Bias:        append([]float32(nil), c.b...),
			OutShape:    append([]int(nil), h.Shape...),
		})
		if i < len(n.convs)-1 {
			h = ReLU(h)
			ops = append(ops, Op{Kind: "relu", OutShape: append([]int(nil), h.Shape...)})
		}
	}
	return ops, h
}
