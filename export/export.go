// Package export freezes a trained checkpoint into a portable graph. It
// loads the snapshot into a fresh model matching the training-time
// architecture contract, switches it to inference mode, traces one forward
// pass on a canonical-shaped probe and serializes the recorded graph.
package export

import (
	"fmt"
	"log"

	"github.com/bayronik/emulator/compute"
	"github.com/bayronik/emulator/inference"
	"github.com/bayronik/emulator/net/unet"
	"github.com/bayronik/emulator/tensor"
	"github.com/bayronik/emulator/weights"
)

// The canonical probe shape: one single-channel 256x256 field map.
const (
	ProbeHeight = 256
	ProbeWidth  = 256
)

// Options configure one export invocation.
type Options struct {
	CheckpointPath string
	OutPath        string
	ProbeHeight    int // defaults to ProbeHeight
	ProbeWidth     int // defaults to ProbeWidth
	Ctx            compute.Context
	Logger         *log.Logger
}

// Run performs the export. A missing checkpoint fails fast with
// weights.ErrNotFound and writes nothing; training a substitute model is
// never attempted. Re-running overwrites any prior export at OutPath.
func Run(opts Options) (*inference.Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.ProbeHeight <= 0 {
		opts.ProbeHeight = ProbeHeight
	}
	if opts.ProbeWidth <= 0 {
		opts.ProbeWidth = ProbeWidth
	}

	snap, err := weights.ReadFile(opts.CheckpointPath)
	if err != nil {
		return nil, fmt.Errorf("cannot export, run training first: %w", err)
	}
	hidden, err := unet.HiddenFromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", opts.CheckpointPath, err)
	}

	model := unet.New(unet.Config{Hidden: hidden, Ctx: opts.Ctx})
	if err := model.Restore(snap); err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", opts.CheckpointPath, err)
	}
	model.SetTraining(false)

	probe := tensor.New(1, unet.InChannels, opts.ProbeHeight, opts.ProbeWidth)
	ops, out := model.Trace(probe)
	g := inference.NewGraph(probe.Shape, ops, out.Shape)

	if err := g.WriteFile(opts.OutPath); err != nil {
		return nil, fmt.Errorf("serializing graph: %w", err)
	}
	logger.Printf("portable graph written to %s (probe %dx%d, %d nodes)",
		opts.OutPath, opts.ProbeHeight, opts.ProbeWidth, len(g.Nodes))
	return g, nil
}
