// Package inference implements the portable graph: a frozen,
// shape-specialized copy of a trained transformation that runs without the
// training code paths. Graphs are produced by the export pipeline and
// executed here with the same kernels the live model uses.
package inference

import (
	"errors"
	"fmt"

	"github.com/bayronik/emulator/net/unet"
	"github.com/bayronik/emulator/tensor"
)

// ErrShape marks an input that does not match the shape the graph was
// frozen for.
var ErrShape = errors.New("input does not match traced shape")

// Node is one frozen operation.
type Node struct {
	Kind        string // "conv2d" or "relu"
	InChannels  int
	OutChannels int
	KernelSize  int
	Stride      int
	Pad         int
	Weight      []float32
	Bias        []float32
	OutShape    []int
}

// Graph is a frozen computation graph, specialized to the probe shape it
// was traced with.
type Graph struct {
	Producer    string
	InputShape  []int // (1, C, H, W) probe shape
	OutputShape []int
	Nodes       []Node

	// Workers bounds kernel parallelism during Apply; zero means serial.
	Workers int
}

// NewGraph freezes a traced op sequence into a portable graph.
func NewGraph(inputShape []int, ops []unet.Op, outputShape []int) *Graph {
	g := &Graph{
		Producer:    "bayronik-emulator",
		InputShape:  append([]int(nil), inputShape...),
		OutputShape: append([]int(nil), outputShape...),
	}
	for _, op := range ops {
		g.Nodes = append(g.Nodes, Node{
			Kind:        op.Kind,
			InChannels:  op.InChannels,
			OutChannels: op.OutChannels,
			KernelSize:  unet.KernelSize,
			Stride:      1,
			Pad:         unet.Pad,
			Weight:      op.Weight,
			Bias:        op.Bias,
			OutShape:    append([]int(nil), op.OutShape...),
		})
	}
	return g
}

// Apply executes the graph on an NCHW batch whose per-sample shape matches
// the probe the graph was traced with.
func (g *Graph) Apply(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) != 4 ||
		x.Dim(1) != g.InputShape[1] || x.Dim(2) != g.InputShape[2] || x.Dim(3) != g.InputShape[3] {
		return nil, fmt.Errorf("%w: got %v, traced for (N,%d,%d,%d)",
			ErrShape, x.Shape, g.InputShape[1], g.InputShape[2], g.InputShape[3])
	}
	h := x
	for i, n := range g.Nodes {
		switch n.Kind {
		case "conv2d":
			h = unet.Conv2D(h, n.Weight, n.Bias, n.OutChannels, g.Workers)
		case "relu":
			h = unet.ReLU(h)
		default:
			return nil, fmt.Errorf("graph node %d has unknown kind %q", i, n.Kind)
		}
	}
	return h, nil
}
