// Package cli provides the patrol command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/awmpietro/guard-patrol-case/internal/app"
	"github.com/awmpietro/guard-patrol-case/internal/config"
	"github.com/awmpietro/guard-patrol-case/internal/patrol"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/cache"
	"github.com/awmpietro/guard-patrol-case/internal/patrol/expect"
)

// Version is set at build time.
var Version = "dev"

type App struct {
	root       *cobra.Command
	stdout     io.Writer
	stderr     io.Writer
	configPath string
}

func New() *App {
	a := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	a.root = &cobra.Command{
		Use:   "patrol",
		Short: "Simulate a guard patrol and find loop-inducing obstacles",
		Long: `patrol walks a guard across a grid map, turning right at every obstacle,
until the guard leaves the map. It reports the cells visited, where the guard
left, and every single cell where one extra obstacle would trap the guard in
a loop.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.ConfigEnv+")")

	a.root.AddCommand(
		a.newVersionCmd(),
		a.newRunCmd(),
		a.newProbeCmd(),
		a.newDotCmd(),
	)
	return a
}

func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

func (a *App) WithInput(stdin io.Reader) *App {
	a.root.SetIn(stdin)
	return a
}

func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "patrol version %s\n", Version)
		},
	}
}

func (a *App) runtime() (config.Runtime, error) {
	path := a.configPath
	if path == "" {
		path = os.Getenv(config.ConfigEnv)
	}
	return config.LoadFile(path)
}

// wiring holds what a command needs from the runtime config. Close flushes
// pending phase observations.
type wiring struct {
	cfg      config.Runtime
	logger   *slog.Logger
	engine   *patrol.Engine
	service  *app.Service
	observer *patrol.AsyncPhaseObserver
}

func (a *App) wire() (*wiring, error) {
	cfg, err := a.runtime()
	if err != nil {
		return nil, err
	}
	mode, err := patrol.ParseMode(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := cfg.Logger(a.stderr)
	observer := patrol.NewAsyncPhaseObserver(patrol.NewPhaseLatencyLogger(logger), cfg.ObsBuffer)
	engine := patrol.NewEngine(
		patrol.WithMode(mode),
		patrol.WithStepBudgetFactor(cfg.StepBudgetFactor),
		patrol.WithWorkers(cfg.Workers),
		patrol.WithPhaseObserver(observer),
		patrol.WithLogger(logger),
	)
	svc := app.NewService(patrol.NewParser(), engine, cache.NewInMemory(cfg.CacheMaxItems), expect.NewAsserter())

	return &wiring{cfg: cfg, logger: logger, engine: engine, service: svc, observer: observer}, nil
}

func (w *wiring) Close() {
	w.observer.Close()
	if d := w.observer.Dropped(); d > 0 {
		w.logger.Warn("phase observations dropped", "count", d)
	}
}

// readGrid reads the grid file at path, or stdin when path is "-".
func readGrid(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read grid: %w", err)
	}
	return string(b), nil
}
