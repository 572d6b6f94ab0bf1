package main

import (
	"errors"
	"flag"
	"log"

	"github.com/bayronik/emulator/compute"
	"github.com/bayronik/emulator/config"
	"github.com/bayronik/emulator/export"
	"github.com/bayronik/emulator/weights"
)

func main() {
	cfgPath := flag.String("config", "", "JSON config file (defaults used when empty)")
	best := flag.Bool("best", false, "export the best-so-far snapshot instead of the final one")
	probeH := flag.Int("probe-height", export.ProbeHeight, "probe map height")
	probeW := flag.Int("probe-width", export.ProbeWidth, "probe map width")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}

	checkpoint := cfg.FinalCheckpointPath()
	if *best {
		checkpoint = cfg.BestCheckpointPath()
	}

	_, err := export.Run(export.Options{
		CheckpointPath: checkpoint,
		OutPath:        cfg.GraphPath(),
		ProbeHeight:    *probeH,
		ProbeWidth:     *probeW,
		Ctx:            compute.Detect(),
	})
	if errors.Is(err, weights.ErrNotFound) {
		log.Fatalf("no trained snapshot at %s; run train_camels first (%v)", checkpoint, err)
	}
	if err != nil {
		log.Fatal(err)
	}
}
