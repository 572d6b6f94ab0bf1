package main

import (
	"flag"
	"log"

	"github.com/bayronik/emulator/compute"
	"github.com/bayronik/emulator/config"
	"github.com/bayronik/emulator/datasets"
	"github.com/bayronik/emulator/datasets/camels"
	"github.com/bayronik/emulator/net/unet"
	"github.com/bayronik/emulator/telemetry"
	"github.com/bayronik/emulator/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "JSON config file (defaults used when empty)")
	dataDir := flag.String("data", "", "override archive directory")
	cache := flag.Bool("cache", false, "materialize the archive in memory")
	resume := flag.Bool("resume", false, "warm-start from the final snapshot of a prior run")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *cache {
		cfg.Cache = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := compute.Detect()
	log.Printf("training on %s: %s", ctx.Device, ctx.Label)

	store, err := camels.Open(camels.Descriptor{
		Root:        cfg.DataDir,
		Suite:       cfg.Suite,
		DatasetType: cfg.DatasetType,
		Redshift:    cfg.Redshift,
		Cache:       cfg.Cache,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()
	h, w := store.Shape()
	log.Printf("loaded %d map pairs of %dx%d", store.Len(), h, w)

	if params := camels.LoadParams(camels.Descriptor{Root: cfg.DataDir, Suite: cfg.Suite, DatasetType: cfg.DatasetType}); params != nil {
		log.Printf("parameter table: %d instances, columns %v", params.Len(), params.Columns)
	}

	model := unet.New(unet.Config{
		Hidden:       cfg.Hidden,
		LearningRate: cfg.LearningRate,
		Seed:         cfg.Seed,
		Ctx:          ctx,
	})
	if *resume {
		if err := trainer.Resume(model, true, cfg.FinalCheckpointPath()); err != nil {
			log.Fatal(err)
		}
		log.Printf("resumed from %s", cfg.FinalCheckpointPath())
	}

	var sink trainer.Sink = trainer.NopSink{}
	if cfg.MetricsPath != "" {
		rec, err := telemetry.Open(cfg.MetricsPath, cfg.ModelName(), nil)
		if err != nil {
			log.Printf("telemetry disabled: %v", err)
		} else {
			defer rec.Close()
			sink = rec
		}
	}

	orch := trainer.Orchestrator{
		Model: model,
		Data:  datasets.NewDataset(store),
		Sink:  sink,
		Opts: trainer.Options{
			Epochs:      cfg.Epochs,
			BatchSize:   cfg.BatchSize,
			ValFraction: cfg.ValFraction,
			Seed:        cfg.Seed,
			Shuffle:     cfg.Shuffle,
			Workers:     cfg.Workers,
			WeightsDir:  cfg.WeightsDir,
			ModelName:   cfg.ModelName(),
		},
	}
	sum, err := orch.Run()
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("training finished: best val loss %.6f at epoch %d", sum.BestValLoss, sum.BestEpoch)
	log.Printf("best snapshot:  %s", sum.BestPath)
	log.Printf("final snapshot: %s", sum.FinalPath)
	if sum.Stale {
		log.Printf("WARNING: %d snapshot write(s) failed; best/final files may be stale", len(sum.WriteErrors))
		for _, e := range sum.WriteErrors {
			log.Printf("  %s", e)
		}
	}
}
