package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/gacha-wish/internal/banner"
	"github.com/xtding233/gacha-wish/internal/sim"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		goal   string
		trials int
		draws  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <banner>",
		Short: "Monte Carlo pulls-to-goal statistics for a banner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := banner.ParseKind(args[0])
			if err != nil {
				return err
			}
			g, err := sim.ParseGoal(goal)
			if err != nil {
				return fmt.Errorf("%w: %q", err, goal)
			}
			cfg, err := a.loader.Resolve(kind)
			if err != nil {
				return err
			}
			var seed uint64
			if s := a.seed(); s != nil {
				seed = *s
			}
			st, err := sim.RunMonteCarlo(sim.Params{Banner: cfg, Goal: g, Trials: trials, Seed: seed, NumDraws: draws})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s over %d trials\n", kind, g, st.Trials)
			fmt.Fprintf(out, "mean %.2f  stddev %.2f  p50 %.0f  p90 %.0f  p99 %.0f  max %d\n",
				st.Mean, st.StdDev, st.P50, st.P90, st.P99, st.Max)
			if st.Misses > 0 {
				fmt.Fprintf(out, "misses: %d\n", st.Misses)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goal, "goal", string(sim.GoalFirstFiveStar), "first_5, first_featured or fixed_budget")
	cmd.Flags().IntVar(&trials, "trials", 10000, "number of trials")
	cmd.Flags().IntVar(&draws, "draws", 90, "pulls per trial for fixed_budget")
	cmd.Flags().BoolVar(&asJSON, "json", false, "render JSON output")
	return cmd
}
