package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lazypower/sensorgraph/internal/config"
	"github.com/lazypower/sensorgraph/internal/hardware"
	"github.com/lazypower/sensorgraph/internal/logger"
	"github.com/lazypower/sensorgraph/internal/metrics"
	"github.com/lazypower/sensorgraph/internal/presence"
	"github.com/lazypower/sensorgraph/internal/resource"
	"github.com/lazypower/sensorgraph/internal/server"
	"github.com/lazypower/sensorgraph/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	configPath string
	portFlag   int
	debugFlag  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway and its HTTP document server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "listen port (overrides server.port)")
	serveCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != 0 {
		cfg.Server.Port = portFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logCfg := logger.ApplyEnv(logger.Config{
		Level:  cfg.Log.Level,
		Output: cfg.Log.Output,
	})
	logCfg.Debug = logCfg.Debug || debugFlag
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.WithComponent("serve")
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	journal, err := store.OpenMemory(cfg.Journal.MaxEvents)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer journal.Close()

	dev, err := openDevices(cfg, log)
	if err != nil {
		return err
	}
	if dev.tags != nil {
		defer dev.tags.Close()
	}

	tracker := presence.New(presence.Options{
		MaxAge:       cfg.Presence.MaxAge,
		QuietPeriod:  cfg.Presence.QuietPeriod,
		TickInterval: cfg.Presence.TickInterval,
	})

	srv := server.New(server.Deps{
		Tracker: tracker,
		Light:   dev.light,
		Sound:   dev.sound,
		LEDs:    dev.leds,
		Journal: journal,
		Metrics: metrics.New(),
		Logger:  logger.GetLogger(),
		Version: VersionString(),
	})
	listener := srv.Listener()

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tracker.Run(ctx, listener)
	})
	if dev.tags != nil {
		g.Go(func() error {
			return ingestTags(ctx, tracker, dev.tags, listener, log)
		})
	}
	g.Go(func() error {
		log.Info().
			Str("addr", addr).
			Int("leds", len(dev.leds)).
			Dur("tick", cfg.Presence.TickInterval).
			Msg("sensorgraph serving")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ingestTags runs the reader loop. A reader that closes on its own leaves the
// registry to age out, so it is logged rather than treated as fatal.
func ingestTags(ctx context.Context, tracker *presence.Tracker, src presence.Source, l presence.Listener, log zerolog.Logger) error {
	if err := tracker.Ingest(ctx, src, l); err != nil {
		return err
	}
	if ctx.Err() == nil {
		log.Warn().Msg("rfid reader closed; presence will no longer update")
	}
	return nil
}

type devices struct {
	light resource.Reader
	sound resource.Reader
	leds  []resource.Switch
	tags  hardware.TagSource
}

// openDevices attaches the configured drivers, falling back to simulated ones
// for anything left unset.
func openDevices(cfg config.Config, log zerolog.Logger) (*devices, error) {
	dev := &devices{}

	if cfg.Ambient.LightPath != "" {
		dev.light = hardware.NewFileSensor(cfg.Ambient.LightPath, cfg.Ambient.LightScale)
	} else {
		log.Info().Msg("light sensor: simulated")
		dev.light = hardware.NewSimulatedSensor(0.4, 0.02)
	}
	if cfg.Ambient.SoundPath != "" {
		dev.sound = hardware.NewFileSensor(cfg.Ambient.SoundPath, cfg.Ambient.SoundScale)
	} else {
		log.Info().Msg("sound sensor: simulated")
		dev.sound = hardware.NewSimulatedSensor(0.1, 0.05)
	}

	for i := 0; i < cfg.LEDs.Count; i++ {
		if i < len(cfg.LEDs.Sysfs) && cfg.LEDs.Sysfs[i] != "" {
			dev.leds = append(dev.leds, hardware.NewSysfsLED(cfg.LEDs.Sysfs[i]))
			continue
		}
		dev.leds = append(dev.leds, hardware.NewSimulatedLED())
	}

	switch {
	case cfg.RFID.Device != "":
		r, err := hardware.OpenTagDevice(cfg.RFID.Device)
		if err != nil {
			return nil, fmt.Errorf("open rfid reader: %w", err)
		}
		log.Info().Str("device", cfg.RFID.Device).Msg("rfid reader attached")
		dev.tags = r
	case len(cfg.RFID.SimulateTags) > 0:
		log.Info().Strs("tags", cfg.RFID.SimulateTags).Msg("rfid reader: simulated")
		dev.tags = hardware.NewSimulatedTags(cfg.RFID.SimulateTags, cfg.RFID.SimulateInterval)
	}

	return dev, nil
}
