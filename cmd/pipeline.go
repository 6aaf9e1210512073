package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/config"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/pipeline"
)

// CreatePipelineCmd creates the pipeline command for bench debugging: it
// renders the capture pipeline for a stream name and either prints it or
// runs it in the foreground with output and signals attached to the
// terminal, unlike the detached launches the server performs.
func CreatePipelineCmd() *cobra.Command {
	var configFile string
	var printOnly bool

	cmd := &cobra.Command{
		Use:       "pipeline <vinyl|cd>",
		Short:     "Render or run a capture pipeline in the foreground",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"vinyl", "cd"},
		RunE: func(_ *cobra.Command, args []string) error {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})
			logger := logging.GetLogger("pipeline")

			cfg := config.LoadPipelineConfig(configFile)

			var p pipeline.Pipeline
			switch args[0] {
			case "vinyl":
				p = pipeline.Vinyl(cfg)
			case "cd":
				p = pipeline.CD(cfg)
			default:
				return fmt.Errorf("unknown stream %q", args[0])
			}

			if printOnly {
				for _, stage := range p.Stages {
					fmt.Println(strings.Join(stage, " "))
				}
				return nil
			}

			logger.Info("Running pipeline in foreground", "stream", p.Name, "stages", len(p.Stages))
			return runForeground(p.Stages)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "audionode.toml", "Path to configuration file")
	cmd.Flags().BoolVar(&printOnly, "print-only", false, "Print the rendered command instead of running it")

	return cmd
}

// runForeground runs the pipeline stages attached to the terminal.
// Stage stdout feeds the next stage's stdin; all stderr goes to the
// terminal. SIGINT and SIGTERM are forwarded to every stage so Ctrl-C
// tears the whole pipeline down.
func runForeground(stages [][]string) error {
	cmds := make([]*exec.Cmd, len(stages))
	for i, argv := range stages {
		cmds[i] = exec.Command(argv[0], argv[1:]...)
		cmds[i].Stderr = os.Stderr
	}
	cmds[len(cmds)-1].Stdout = os.Stdout

	for i := 0; i < len(cmds)-1; i++ {
		pipe, err := cmds[i].StdoutPipe()
		if err != nil {
			return fmt.Errorf("failed to connect stage %d: %w", i, err)
		}
		cmds[i+1].Stdin = pipe
	}

	for i, c := range cmds {
		if err := c.Start(); err != nil {
			for _, started := range cmds[:i] {
				_ = started.Process.Kill()
				_ = started.Wait()
			}
			return fmt.Errorf("failed to start %s: %w", stages[i][0], err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		for _, c := range cmds {
			if c.Process != nil {
				_ = c.Process.Signal(sig)
			}
		}
	}()

	var firstErr error
	for _, c := range cmds {
		if err := c.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
