// Package unet implements the reference field-map transformation: a small
// same-shape convolutional net over single-channel maps, with hand-written
// backpropagation and an Adam optimizer. It satisfies the trainer's model
// capability contract; any differentiable same-shape transformation can be
// substituted for it.
package unet

import (
	"fmt"
	"math/rand"

	"github.com/bayronik/emulator/compute"
	"github.com/bayronik/emulator/tensor"
	"github.com/bayronik/emulator/weights"
)

// Channel contract: one input field map in, one target field map out.
const (
	InChannels  = 1
	OutChannels = 1
)

// Config sets the learnable transformation up.
type Config struct {
	Hidden       int     // hidden channel count, default 16
	LearningRate float64 // Adam learning rate, default 1e-4
	Seed         int64   // parameter initialization seed
	Ctx          compute.Context
}

// Net is the reference model.
type Net struct {
	convs    []*conv
	lr       float64
	workers  int
	training bool

	// forward caches, training mode only
	acts []*tensor.Tensor
}

// New constructs a freshly initialized net.
func New(cfg Config) *Net {
	if cfg.Hidden <= 0 {
		cfg.Hidden = 16
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 1e-4
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Net{
		convs: []*conv{
			newConv("conv1", InChannels, cfg.Hidden, rng),
			newConv("conv2", cfg.Hidden, cfg.Hidden, rng),
			newConv("conv3", cfg.Hidden, OutChannels, rng),
		},
		lr:       cfg.LearningRate,
		workers:  cfg.Ctx.Workers,
		training: true,
	}
}

// SetTraining switches between training and inference-only mode. Inference
// mode keeps no activations, so Backward is only valid after a training-mode
// Forward.
func (n *Net) SetTraining(training bool) {
	n.training = training
	if !training {
		n.acts = nil
		for _, c := range n.convs {
			c.in = nil
		}
	}
}

// Forward maps an NCHW batch of input fields to predicted target fields of
// the same shape.
func (n *Net) Forward(x *tensor.Tensor) *tensor.Tensor {
	n.acts = n.acts[:0]
	h := x
	for i, c := range n.convs {
		h = c.forward(h, n.training, n.workers)
		if i < len(n.convs)-1 {
			if n.training {
				n.acts = append(n.acts, h) // pre-activation, needed for the ReLU gradient
			}
			h = ReLU(h)
		}
	}
	return h
}

// Backward propagates the loss gradient through the net, accumulating
// parameter gradients.
func (n *Net) Backward(grad *tensor.Tensor) {
	d := grad
	for i := len(n.convs) - 1; i >= 0; i-- {
		d = n.convs[i].backward(d, n.workers)
		if i > 0 {
			pre := n.acts[i-1]
			for j, v := range pre.Data {
				if v <= 0 {
					d.Data[j] = 0
				}
			}
		}
	}
}

// Step applies one Adam update to every layer.
func (n *Net) Step() {
	for _, c := range n.convs {
		c.step(n.lr)
	}
}

// ZeroGrad clears the accumulated parameter gradients.
func (n *Net) ZeroGrad() {
	for _, c := range n.convs {
		c.zeroGrad()
	}
}

// Snapshot copies all learnable parameter values.
func (n *Net) Snapshot() weights.Snapshot {
	s := weights.Snapshot{Model: "unet"}
	for _, c := range n.convs {
		s.Params = append(s.Params,
			weights.Param{
				Name:  c.name + ".weight",
				Shape: []int{c.outC, c.inC, KernelSize, KernelSize},
				Data:  append([]float32(nil), c.w...),
			},
			weights.Param{
				Name:  c.name + ".bias",
				Shape: []int{c.outC},
				Data:  append([]float32(nil), c.b...),
			},
		)
	}
	return s
}

// Restore loads parameter values from a snapshot taken of the same
// architecture.
func (n *Net) Restore(s weights.Snapshot) error {
	for _, c := range n.convs {
		w := s.Find(c.name + ".weight")
		b := s.Find(c.name + ".bias")
		if w == nil || b == nil {
			return fmt.Errorf("snapshot lacks parameters for layer %s", c.name)
		}
		if len(w.Data) != len(c.w) || len(b.Data) != len(c.b) {
			return fmt.Errorf("layer %s: snapshot sizes %d/%d do not match %d/%d",
				c.name, len(w.Data), len(b.Data), len(c.w), len(c.b))
		}
		copy(c.w, w.Data)
		copy(c.b, b.Data)
	}
	return nil
}

// HiddenFromSnapshot recovers the hidden channel count from a snapshot.
func HiddenFromSnapshot(s weights.Snapshot) (int, error) {
	p := s.Find("conv1.weight")
	if p == nil || len(p.Shape) != 4 {
		return 0, fmt.Errorf("snapshot lacks conv1.weight")
	}
	return p.Shape[0], nil
}
