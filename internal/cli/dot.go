package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

func (a *App) newDotCmd() *cobra.Command {
	var (
		out       string
		obstacles bool
	)

	cmd := &cobra.Command{
		Use:   "dot <grid-file>",
		Short: "Render the patrol as a Graphviz DOT graph",
		Example: `  patrol dot input.txt | dot -Tsvg > patrol.svg
  patrol dot --obstacles -o patrol.dot input.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readGrid(cmd, args[0])
			if err != nil {
				return err
			}
			g, err := patrol.NewParser().Parse(raw)
			if err != nil {
				return err
			}

			w, err := a.wire()
			if err != nil {
				return err
			}
			defer w.Close()

			p, err := patrol.NewWalker(g, patrol.WithStepBudget(w.cfg.StepBudgetFactor*g.Area())).Walk(g.FindAgent())
			if err != nil {
				return err
			}
			var found []patrol.Position
			if obstacles {
				r, err := w.engine.Run(cmd.Context(), g, "")
				if err != nil {
					return err
				}
				found = r.Obstacles
			}

			dot, err := patrol.RenderDOT(g, p, found)
			if err != nil {
				return fmt.Errorf("render DOT: %w", err)
			}
			if out == "" {
				_, err = fmt.Fprint(a.stdout, dot)
				return err
			}
			if err := os.WriteFile(out, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("write DOT: %w", err)
			}
			fmt.Fprintf(a.stdout, "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&obstacles, "obstacles", false, "Include loop-inducing obstacles")

	return cmd
}
