package trainer

import (
	"fmt"
	"log"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"github.com/bayronik/emulator/datasets"
	"github.com/bayronik/emulator/parallel"
	"github.com/bayronik/emulator/tensor"
	"github.com/bayronik/emulator/weights"
)

// Options configure one training run.
type Options struct {
	Epochs      int
	BatchSize   int
	ValFraction float64 // held-out fraction, 0.1 by convention
	Seed        int64
	Shuffle     bool // shuffle training batch order each epoch
	Workers     int  // prefetch parallelism, 0 = synchronous
	WeightsDir  string
	ModelName   string // final snapshot file name; best gets a best_ prefix
	Logger      *log.Logger
}

// Summary reports how a run went. Stale is set when a snapshot write failed,
// meaning the best or final file on disk may lag the run.
type Summary struct {
	Epochs       int
	BestEpoch    int
	BestValLoss  float64
	TrainLoss    float64 // last epoch
	ValLoss      float64 // last epoch
	BestPath     string
	FinalPath    string
	Stale        bool
	WriteErrors  []string
}

// Orchestrator drives the epoch state machine: train phase, validate phase,
// checkpoint decision, and a final unconditional snapshot.
type Orchestrator struct {
	Model Model
	Data  *datasets.Dataset
	Sink  Sink
	Opts  Options
}

type batchPair struct {
	in  *tensor.Tensor
	tgt *tensor.Tensor
}

// Run executes the whole training run. Archive access failures abort;
// snapshot write failures are logged and flagged, not fatal, so a lost write
// never discards completed training progress.
func (o *Orchestrator) Run() (Summary, error) {
	logger := o.Opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	sink := o.Sink
	if sink == nil {
		sink = NopSink{}
	}

	trainIdx, valIdx := datasets.Split(o.Data.Len(), o.Opts.ValFraction, o.Opts.Seed)
	logger.Printf("training size: %d, validation size: %d", len(trainIdx), len(valIdx))

	trainBatches := datasets.NewBatches(trainIdx, o.Opts.BatchSize, o.Opts.Shuffle, o.Opts.Seed)
	valBatches := datasets.NewBatches(valIdx, o.Opts.BatchSize, false, o.Opts.Seed)

	sum := Summary{
		Epochs:      o.Opts.Epochs,
		BestValLoss: math.Inf(1),
		BestPath:    filepath.Join(o.Opts.WeightsDir, "best_"+o.Opts.ModelName),
		FinalPath:   filepath.Join(o.Opts.WeightsDir, o.Opts.ModelName),
	}

	for epoch := 1; epoch <= o.Opts.Epochs; epoch++ {
		trainLoss, err := o.trainPhase(trainBatches)
		if err != nil {
			return sum, fmt.Errorf("epoch %d train phase: %w", epoch, err)
		}
		valLoss, err := o.validatePhase(valBatches)
		if err != nil {
			return sum, fmt.Errorf("epoch %d validate phase: %w", epoch, err)
		}
		sum.TrainLoss, sum.ValLoss = trainLoss, valLoss

		logger.Printf("epoch %d/%d -> train loss: %.6f | val loss: %.6f",
			epoch, o.Opts.Epochs, trainLoss, valLoss)
		sink.Epoch(epoch, trainLoss, valLoss)

		if valLoss < sum.BestValLoss {
			sum.BestValLoss = valLoss
			sum.BestEpoch = epoch
			if err := weights.WriteFile(sum.BestPath, o.Model.Snapshot()); err != nil {
				sum.Stale = true
				sum.WriteErrors = append(sum.WriteErrors, err.Error())
				logger.Printf("epoch %d: keeping prior best snapshot, write failed: %v", epoch, err)
			} else {
				logger.Printf("epoch %d: new best snapshot (val loss %.6f)", epoch, valLoss)
			}
		}
	}

	if err := weights.WriteFile(sum.FinalPath, o.Model.Snapshot()); err != nil {
		sum.Stale = true
		sum.WriteErrors = append(sum.WriteErrors, err.Error())
		logger.Printf("final snapshot write failed, best snapshot untouched: %v", err)
	}
	return sum, nil
}

// trainPhase runs one epoch of forward/backward/step over the training
// batches. The epoch loss is the mean of batch means; the short final batch
// biases it slightly, which is accepted since batch sizes are near-uniform.
func (o *Orchestrator) trainPhase(b *datasets.Batches) (float64, error) {
	o.Model.SetTraining(true)
	b.Reset()

	losses := make([]float64, 0, b.Count())
	for res := range parallel.Prefetch(groups(b), o.Opts.Workers, o.fetch) {
		if res.Err != nil {
			return 0, res.Err
		}
		pred := o.Model.Forward(res.Value.in)
		loss, grad := mseWithGrad(pred, res.Value.tgt)
		o.Model.Backward(grad)
		o.Model.Step()
		o.Model.ZeroGrad()
		losses = append(losses, loss)
	}
	return floats.Sum(losses) / float64(len(losses)), nil
}

// validatePhase scores the model over the validation batches in
// inference-only mode: no gradients, no parameter mutation.
func (o *Orchestrator) validatePhase(b *datasets.Batches) (float64, error) {
	o.Model.SetTraining(false)
	defer o.Model.SetTraining(true)
	b.Reset()

	losses := make([]float64, 0, b.Count())
	for res := range parallel.Prefetch(groups(b), o.Opts.Workers, o.fetch) {
		if res.Err != nil {
			return 0, res.Err
		}
		pred := o.Model.Forward(res.Value.in)
		losses = append(losses, mse(pred, res.Value.tgt))
	}
	return floats.Sum(losses) / float64(len(losses)), nil
}

// fetch assembles one NCHW batch pair from the dataset.
func (o *Orchestrator) fetch(group []int) (batchPair, error) {
	h, w := o.Data.Shape()
	in := tensor.New(len(group), 1, h, w)
	tgt := tensor.New(len(group), 1, h, w)
	plane := h * w
	for bi, idx := range group {
		sampleIn, sampleTgt, err := o.Data.Get(idx)
		if err != nil {
			return batchPair{}, err
		}
		copy(in.Data[bi*plane:(bi+1)*plane], sampleIn.Data)
		copy(tgt.Data[bi*plane:(bi+1)*plane], sampleTgt.Data)
	}
	return batchPair{in: in, tgt: tgt}, nil
}

func groups(b *datasets.Batches) [][]int {
	out := make([][]int, 0, b.Count())
	for {
		g, ok := b.Next()
		if !ok {
			return out
		}
		out = append(out, append([]int(nil), g...))
	}
}
