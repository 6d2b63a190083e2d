package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/gacha-wish/internal/banner"
	"github.com/xtding233/gacha-wish/internal/gacha"
	"github.com/xtding233/gacha-wish/internal/item"
)

type pullResult struct {
	Banner  banner.Kind         `json:"banner"`
	Pulls   []item.Item         `json:"pulls"`
	Counts  map[item.Rating]int `json:"counts"`
	Spent   int                 `json:"spent"`
	Token   string              `json:"token"`
	State   gacha.PityState     `json:"state"`
	Stopped string              `json:"stopped,omitempty"`
}

func newPullCmd(a *app) *cobra.Command {
	var (
		count  int
		ten    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "pull <banner>",
		Short: "Pull on a banner in a fresh session",
		Long:  "Runs count single pulls, or count ten-pulls with --ten, in one session and prints every item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := banner.ParseKind(args[0])
			if err != nil {
				return err
			}
			if count <= 0 {
				return fmt.Errorf("--count must be > 0")
			}
			res, err := a.pull(kind, count, ten)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printPulls(cmd, res)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of pulls (ten-pulls with --ten)")
	cmd.Flags().BoolVar(&ten, "ten", false, "use ten-pulls")
	cmd.Flags().BoolVar(&asJSON, "json", false, "render JSON output")
	return cmd
}

func (a *app) pull(kind banner.Kind, count int, ten bool) (pullResult, error) {
	cfg, err := a.loader.Resolve(kind)
	if err != nil {
		return pullResult{}, err
	}
	opts := []banner.Option{
		banner.WithBatchDisabled(func() {
			a.logger.Info("ten-pull disabled", "banner", kind)
		}),
	}
	if s := a.seed(); s != nil {
		opts = append(opts, banner.WithRNG(gacha.NewSeededRNG(*s)))
	}
	sess, err := banner.NewSession(cfg, opts...)
	if err != nil {
		return pullResult{}, err
	}

	res := pullResult{Banner: kind, Counts: map[item.Rating]int{}, Token: cfg.Cost.Name}
	for i := 0; i < count; i++ {
		if ten {
			items, ok := sess.Roll()
			if !ok {
				res.Stopped = "ten-pull unavailable"
				break
			}
			res.Pulls = append(res.Pulls, items...)
			res.Spent += cfg.Cost.ForBatches(1)
			continue
		}
		it, ok := sess.RollOnce()
		if !ok {
			res.Stopped = "budget exhausted"
			break
		}
		res.Pulls = append(res.Pulls, it)
		res.Spent += cfg.Cost.ForSingles(1)
	}
	for _, it := range res.Pulls {
		res.Counts[it.Rating]++
	}
	res.State = sess.State()
	return res, nil
}

func printPulls(cmd *cobra.Command, res pullResult) error {
	out := cmd.OutOrStdout()
	for i, it := range res.Pulls {
		mark := ""
		if it.Featured {
			mark = " (featured)"
		}
		fmt.Fprintf(out, "%3d  %s  %s%s\n", i+1, it.Rating, it.Name, mark)
	}
	fmt.Fprintf(out, "5*: %d  4*: %d  3*: %d  spent: %d %s\n",
		res.Counts[item.FiveStar], res.Counts[item.FourStar], res.Counts[item.ThreeStar], res.Spent, res.Token)
	fmt.Fprintf(out, "pity: %d since 5*, %d since 4*, guaranteed featured: %t\n",
		res.State.SinceLast5, res.State.SinceLast4, res.State.GuaranteedFeatured)
	if res.Stopped != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "stopped early: %s\n", res.Stopped)
	}
	return nil
}
