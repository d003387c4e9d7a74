// Package cmd - freight command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"import-cost/core/money"
	"import-cost/core/output"
	"import-cost/core/pricing"
	"import-cost/internal/config"
)

var freightRate string

// freightCmd prints the freight tier for a weight
var freightCmd = &cobra.Command{
	Use:   "freight <grams>",
	Short: "Show the freight charged for a total weight",
	Long: `Show the freight for a total weight in grams: 50 for the first 100 g
block and 11 for each further block started.

Examples:
  import-cost freight 350
  import-cost freight 1000 --rate 0.847`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		p := presenter(cfg)

		q := pricing.Freight(money.ParseNumber(args[0]))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Weight:  %sg\n", q.TotalWeight)
		fmt.Fprintf(out, "Blocks:  %d\n", q.Blocks)
		fmt.Fprintf(out, "Freight: %s\n", output.FormatMoney(q.Amount, p.Source))

		rate := cfg.Calculator.Configuration().ExchangeRate
		if cmd.Flags().Changed("rate") {
			rate = money.ParseNumber(freightRate)
		}
		if converted, degraded := pricing.ConvertFreight(q.Amount, rate); !degraded {
			fmt.Fprintf(out, "Converted: %s\n", output.FormatMoney(converted, p.Target))
		}
		return nil
	},
}

func init() {
	freightCmd.Flags().StringVarP(&freightRate, "rate", "r", "", "exchange rate used to convert the freight")
}
