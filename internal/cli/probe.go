package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

func (a *App) newProbeCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:     "probe <grid-file>",
		Short:   "Walk the patrol once with one extra obstacle",
		Example: `  patrol probe --at 3,6 input.txt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := patrol.ParsePosition(at)
			if err != nil {
				return err
			}
			raw, err := readGrid(cmd, args[0])
			if err != nil {
				return err
			}

			w, err := a.wire()
			if err != nil {
				return err
			}
			defer w.Close()

			res, _, err := w.service.Probe(cmd.Context(), raw, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "obstacle: %s\n", res.Obstacle)
			fmt.Fprintf(a.stdout, "outcome: %s\n", res.Outcome)
			fmt.Fprintf(a.stdout, "visited: %d\n", res.Visited)
			fmt.Fprintf(a.stdout, "terminal: %s\n", res.Terminal)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Obstacle position as x,y (required)")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}
