package trainer

import (
	"github.com/bayronik/emulator/tensor"
	"github.com/bayronik/emulator/weights"
)

// Model is the opaque learnable transformation the orchestrator drives.
// Forward maps an NCHW batch of single-channel input maps to predicted maps
// of the same shape; Backward consumes the loss gradient from a
// training-mode Forward; Step applies one optimizer update and ZeroGrad
// clears accumulated gradients. Parameter state is exchanged through
// snapshots.
type Model interface {
	Forward(x *tensor.Tensor) *tensor.Tensor
	Backward(grad *tensor.Tensor)
	Step()
	ZeroGrad()
	SetTraining(training bool)
	Snapshot() weights.Snapshot
	Restore(s weights.Snapshot) error
}

// Sink receives one record per epoch, fire-and-forget: implementations must
// swallow their own failures and never block training.
type Sink interface {
	Epoch(epoch int, trainLoss, valLoss float64)
}

// NopSink discards epoch records.
type NopSink struct{}

// Epoch implements Sink.
func (NopSink) Epoch(int, float64, float64) {}
