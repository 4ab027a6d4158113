package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awmpietro/guard-patrol-case/internal/app"
	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

// ErrExpectationFailed is returned by run when --expect does not hold.
var ErrExpectationFailed = errors.New("expectation failed")

type runOptions struct {
	mode   string
	expect string
	trace  bool
}

func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <grid-file>",
		Short: "Walk the patrol and count loop-inducing obstacles",
		Long: `Walk the patrol on the grid in <grid-file> ("-" reads stdin) and print the
visited cell count, the exit state and the number of loop-inducing obstacles.

Examples:
  patrol run input.txt
  patrol run --mode crosscheck input.txt
  patrol run --expect 'visited == 41 && loops == 6' input.txt
  cat input.txt | patrol run --trace -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readGrid(cmd, args[0])
			if err != nil {
				return err
			}
			return a.runPatrol(cmd.Context(), raw, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "Obstacle search: extrapolate, bruteforce or crosscheck (default from config)")
	cmd.Flags().StringVar(&opts.expect, "expect", "", "Boolean expression the report must satisfy")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print the execution trace as JSON")

	return cmd
}

func (a *App) runPatrol(ctx context.Context, raw string, opts *runOptions) error {
	var mode patrol.Mode
	if opts.mode != "" {
		m, err := patrol.ParseMode(opts.mode)
		if err != nil {
			return err
		}
		mode = m
	}

	w, err := a.wire()
	if err != nil {
		return err
	}
	defer w.Close()

	in := app.AnalyzeOptions{Mode: mode, Expect: opts.expect}
	var (
		r     *patrol.Report
		trace *app.AnalyzeTrace
	)
	if opts.trace {
		r, trace, _, err = w.service.AnalyzeWithTrace(ctx, raw, in)
	} else {
		r, _, err = w.service.Analyze(ctx, raw, in)
	}
	if trace != nil {
		if perr := a.printTrace(trace); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "visited: %d\n", r.Visited)
	fmt.Fprintf(a.stdout, "terminal: %s\n", r.Terminal)
	if r.Outcome == patrol.OutcomeLooped {
		fmt.Fprintln(a.stdout, "outcome: looped")
	}
	fmt.Fprintf(a.stdout, "loop_obstacles: %d\n", r.LoopCount)
	if r.Mode == patrol.ModeCrossCheck {
		fmt.Fprintf(a.stdout, "disagreements: %d\n", len(r.Disagreements))
		for _, p := range r.Disagreements {
			fmt.Fprintf(a.stdout, "  %s\n", p)
		}
	}

	if r.Expectation != nil {
		status := "passed"
		if !r.Expectation.Passed {
			status = "failed"
		}
		fmt.Fprintf(a.stdout, "expectation: %s (%s)\n", status, r.Expectation.Expr)
		if !r.Expectation.Passed {
			return fmt.Errorf("%w: %s", ErrExpectationFailed, r.Expectation.Expr)
		}
	}
	return nil
}

func (a *App) printTrace(trace *app.AnalyzeTrace) error {
	b, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, string(b))
	return err
}
