package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xtding233/gacha-wish/internal/pricing"
	"github.com/xtding233/gacha-wish/internal/token"
)

func newCostCmd(a *app) *cobra.Command {
	var (
		wishes    int
		budget    int
		storePath string
		repeat    bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Plan the cheapest top-up for a number of wishes, or the most wishes for a budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (wishes > 0) == (budget > 0) {
				return fmt.Errorf("set exactly one of --wishes or --budget")
			}
			cat := pricing.DefaultStore()
			if storePath != "" {
				var err error
				if cat, err = readStore(storePath); err != nil {
					return err
				}
			}
			if v := a.v.GetFloat64("tax_rate"); v > 0 {
				cat.TaxRate = v
			}
			first := pricing.AllFirstTime(cat)
			if repeat {
				first = pricing.FirstTimeState{}
			}

			var plan pricing.Plan
			if wishes > 0 {
				plan = pricing.MinCostForWishes(cat, wishes, first)
			} else {
				plan = pricing.MaxTokensUnderBudget(cat, budget, first)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			out := cmd.OutOrStdout()
			for _, p := range plan.Purchases {
				fmt.Fprintf(out, "%dx %s  %s\n", p.Qty, p.Name, money(p.Subtotal, plan.Currency))
			}
			fmt.Fprintf(out, "total %s (tax %s)  %d %s = %d wishes\n",
				money(plan.TotalCents, plan.Currency), money(plan.TaxCents, plan.Currency),
				plan.TotalTokens, cat.TokenName, plan.TotalTokens/token.PrimogemsPerFate)
			return nil
		},
	}

	cmd.Flags().IntVar(&wishes, "wishes", 0, "wishes to buy")
	cmd.Flags().IntVar(&budget, "budget", 0, "budget in cents")
	cmd.Flags().StringVar(&storePath, "store", "", "store price list (yaml); default is the bundled USD list")
	cmd.Flags().Float64("tax", 0, "tax rate applied to the subtotal, e.g. 0.08")
	cmd.Flags().BoolVar(&repeat, "repeat", false, "first-time double bonuses already used")
	cmd.Flags().BoolVar(&asJSON, "json", false, "render JSON output")
	_ = a.v.BindPFlag("tax_rate", cmd.Flags().Lookup("tax"))
	return cmd
}

func readStore(path string) (pricing.Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return pricing.Catalog{}, fmt.Errorf("read store %s: %w", path, err)
	}
	var cat pricing.Catalog
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return pricing.Catalog{}, fmt.Errorf("parse store %s: %w", path, err)
	}
	if len(cat.Packs) == 0 {
		return pricing.Catalog{}, fmt.Errorf("store %s has no packs", path)
	}
	return cat, nil
}

func money(cents int, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}
