package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xtding233/gacha-wish/internal/banner"
)

func newBannersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "banners",
		Short: "List the banners in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tNAME\tPITY5\tPITY4\tRATE-UP\tBUDGET\tITEMS")
			for _, k := range banner.Kinds {
				cfg, err := a.loader.Resolve(k)
				if err != nil {
					return err
				}
				pity5 := "-"
				if cfg.Rates.Pity5 > 0 {
					pity5 = fmt.Sprint(cfg.Rates.Pity5)
				}
				budget := "-"
				if cfg.Limited() {
					budget = fmt.Sprint(cfg.Budget)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\t%d\n",
					k, cfg.Name, pity5, cfg.Rates.Pity4, cfg.RateUp != nil, budget, len(cfg.Items))
			}
			return tw.Flush()
		},
	}
}
