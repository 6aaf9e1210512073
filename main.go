package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/cmd"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/api"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/command"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/config"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/events"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/metrics"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/pipeline"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/player"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/streams"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/systemd"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/telemetry"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"audionode.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":5000" toml:"server.port" env:"SERVER_PORT"`

	// Pipeline settings
	AlsaDevice string `help:"ALSA capture device for the turntable" default:"hw:CARD=Device,DEV=0" toml:"pipeline.alsa_device" env:"PIPELINE_ALSA_DEVICE"`
	CdDevice   string `help:"Optical drive block device" default:"/dev/sr0" toml:"pipeline.cd_device" env:"PIPELINE_CD_DEVICE"`
	RtspBase   string `help:"Base URL of the RTSP relay" default:"rtsp://localhost:8554" toml:"pipeline.rtsp_base" env:"PIPELINE_RTSP_BASE"`
	Bitrate    string `help:"Opus target bitrate for all streams" default:"64k" toml:"pipeline.bitrate" env:"PIPELINE_BITRATE"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingStreams   string `help:"Stream supervisor logging level" default:"info" toml:"logging.streams" env:"LOGGING_STREAMS"`
	LoggingTelemetry string `help:"Telemetry logging level" default:"info" toml:"logging.telemetry" env:"LOGGING_TELEMETRY"`
	LoggingPlayer    string `help:"Player logging level" default:"info" toml:"logging.player" env:"LOGGING_PLAYER"`
	LoggingCommand   string `help:"Command executor logging level" default:"info" toml:"logging.command" env:"LOGGING_COMMAND"`
	LoggingHTTP      string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"api":       opts.LoggingAPI,
				"streams":   opts.LoggingStreams,
				"telemetry": opts.LoggingTelemetry,
				"player":    opts.LoggingPlayer,
				"command":   opts.LoggingCommand,
				"http":      opts.LoggingHTTP,
			},
		})

		logger := logging.GetLogger("main")

		// Host-metrics capability is probed once; a facility broken at boot
		// stays flagged off for the life of the process.
		caps := telemetry.DetectCapabilities()

		executor := command.NewExecutor()
		eventBus := events.New()

		pipelineConfig := pipeline.Config{
			ALSADevice: opts.AlsaDevice,
			CDDevice:   opts.CdDevice,
			RTSPBase:   opts.RtspBase,
			Bitrate:    opts.Bitrate,
		}

		registry := streams.NewRegistry(streams.Options{
			Executor: executor,
			Bus:      eventBus,
			Config:   pipelineConfig,
		})

		collector := telemetry.NewCollector(caps, executor)
		audioPlayer := player.New(executor, eventBus)

		// Companion service control needs the system D-Bus; without it the
		// /services routes are simply not registered.
		var serviceManager api.ServiceManager
		systemdManager, sysErr := systemd.NewManager(context.Background())
		if sysErr != nil {
			logger.Warn("systemd unavailable, service control disabled", "error", sysErr)
		} else {
			serviceManager = systemdManager
		}

		server := api.NewServer(&api.Options{
			Supervisor:        registry,
			Player:            audioPlayer,
			Collector:         collector,
			EventBus:          eventBus,
			ServiceManager:    serviceManager,
			Capabilities:      caps,
			PrometheusHandler: metrics.Handler(),
		})

		// Watch the config file so log levels and pipeline settings apply
		// without a restart. Running pipelines keep their launch settings.
		watcher := config.NewConfigWatcher(
			opts.Config,
			config.LoadFileConfig,
			logger,
			config.WithDebounce[config.FileConfig](1500*time.Millisecond),
		)
		watcher.OnReload(func(cfg config.FileConfig) {
			logging.Initialize(cfg.Logging)
			registry.UpdateConfig(cfg.Pipeline)
		})

		hooks.OnStart(func() {
			if err := watcher.Start(); err != nil {
				logger.Warn("Failed to start config watcher, hot-reload disabled", "error", err)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			_ = watcher.Stop()

			if systemdManager != nil {
				systemdManager.Close()
			}
			// Supervised pipelines are deliberately left running; they are
			// rediscovered via the process table on the next start.
		})
	})

	cli.Root().AddCommand(cmd.CreateSysinfoCmd())
	cli.Root().AddCommand(cmd.CreatePipelineCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
