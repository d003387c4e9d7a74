// Package cmd - history command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"import-cost/adapters/storage"
	"import-cost/core/output"
	"import-cost/core/ui"
	"import-cost/internal/config"
)

var (
	historyLimit int
	historyLabel string
)

// historyCmd manages saved quotes
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and compare saved quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved quotes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		quotes, err := store.List(ctxOf(cmd), &storage.ListFilter{Label: historyLabel, Limit: historyLimit})
		if err != nil {
			return err
		}

		p := presenter(cfg)
		w := ui.NewWriter(cmd.OutOrStdout(), cfg.Output.NoColor)
		if len(quotes) == 0 {
			w.Info("No saved quotes")
			return nil
		}
		table := w.NewTable("ID", "Saved", "Label", "Products", "Total")
		for _, q := range quotes {
			table.AddRow(q.ID, q.CreatedAt.Local().Format("2006-01-02 15:04"), q.Label,
				fmt.Sprintf("%d", len(q.Products)), output.FormatMoney(q.GrandTotal(), p.Target))
		}
		table.Render()
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the breakdown of a saved quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		q, err := store.Get(ctxOf(cmd), args[0])
		if err != nil {
			return err
		}
		if q.Result == nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		}
		fmt.Fprintln(cmd.OutOrStdout(), presenter(cfg).Trace(q.Result))
		return nil
	},
}

var historyCompareCmd = &cobra.Command{
	Use:   "compare <old-id> <new-id>",
	Short: "Compare the totals of two saved quotes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := storage.Compare(ctxOf(cmd), store, args[0], args[1])
		if err != nil {
			return err
		}

		p := presenter(cfg)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Old total: %s\n", output.FormatMoney(res.OldTotal, p.Target))
		fmt.Fprintf(out, "New total: %s\n", output.FormatMoney(res.NewTotal, p.Target))
		fmt.Fprintf(out, "Change:    %s (%s%%)\n", output.FormatMoney(res.Delta, p.Target), output.FormatNumber(res.DeltaPercent))
		fmt.Fprintf(out, "Per unit:  %s -> %s\n",
			output.FormatMoney(res.OldUnitCost, p.Target), output.FormatMoney(res.NewUnitCost, p.Target))
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(config.Get())
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Delete(ctxOf(cmd), args[0])
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of quotes")
	historyListCmd.Flags().StringVar(&historyLabel, "label", "", "only quotes whose label contains this text")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCompareCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

func openHistory(cfg *config.Config) (storage.Store, error) {
	return storage.StoreFactory(storage.Backend(cfg.History.Backend), cfg.History.Directory)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
