package cmd

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/tdconfig"
	"github.com/go-drift/tinydisplay/pkg/tickdriver"
	"github.com/go-drift/tinydisplay/pkg/tickengine"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run a configuration headlessly for a fixed number of ticks",
		Long: `Run loads a YAML configuration (or the built-in defaults if no
path is given), constructs the engine, and pulses it for -ticks ticks,
logging each tick's active animation count.

No animations or coordination primitives are registered by this
command on its own; it exercises the engine's tick-pulse machinery and
persistence layer, which is useful for smoke-testing a configuration
and its persistence_path before wiring it into a host application.

-live paces the pulses to the configuration's fps in real time via
pkg/tickdriver instead of firing them back-to-back, useful for watching
a configuration run at its intended rate.`,
		Usage: "tinydisplay run [-ticks N] [-live] [config.yaml]",
		Run:   runRun,
	})
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	ticks := fs.Int("ticks", 300, "number of ticks to pulse")
	live := fs.Bool("live", false, "pace ticks to the configuration's fps in real time")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfgPath string
	if fs.NArg() > 0 {
		cfgPath = fs.Arg(0)
	}

	cfg, err := tdconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sessionID := uuid.New().String()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("session_id", sessionID)
	log.Info("starting run", "config", cfgPath, "fps", cfg.FPS, "workers", cfg.Workers, "ticks", *ticks)

	renderer := func(frame *anim.FrameState) {
		active := 0
		for _, st := range frame.States {
			if st.Active {
				active++
			}
		}
		log.Info("tick pulsed", "tick", frame.Tick, "active_animations", active)
	}

	engine, err := tickengine.New(*cfg, renderer)
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Error("close engine", "err", err)
		}
	}()

	if *live {
		done := make(chan struct{})
		pulsed := 0
		driver := tickdriver.New(cfg.FPS, func() {
			engine.OnTickPulse()
			pulsed++
			if pulsed >= *ticks {
				close(done)
			}
		})
		driver.Start()
		<-done
		driver.Stop()
	} else {
		for i := 0; i < *ticks; i++ {
			engine.OnTickPulse()
		}
	}

	log.Info("run complete", "ticks", *ticks, "persistence_path", cfg.PersistencePath)
	return nil
}
