// Package cmd - estimate command
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"import-cost/adapters/quote"
	"import-cost/adapters/storage"
	"import-cost/core/ledger"
	"import-cost/core/money"
	"import-cost/core/output"
	"import-cost/core/session"
	"import-cost/core/types"
	"import-cost/internal/config"
	"import-cost/internal/errors"
	"import-cost/internal/logging"
)

var (
	outputFormat string
	outputFile   string
	rateFlag     string
	icmsFlag     string
	useSample    bool
	showDetails  bool
	productFlags []string
	saveQuote    bool
	quoteLabel   string
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [quote-file]",
	Short: "Calculate the landed cost of a list of products",
	Long: `Calculate subtotal, freight, import tax, ICMS and the per-unit average.

Products come from a quote file (.hcl, .csv, .xlsx or .json), from repeated
--product flags written as "price;quantity;weight", or from --sample.
Rates given on the command line override the quote file, which overrides
the configuration.

Examples:
  import-cost estimate --sample --details
  import-cost estimate quote.hcl
  import-cost estimate --rate 0.847 --product "¥ 177,00;2;200"
  import-cost estimate quote.json --format pdf --output quote.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, text, json, xlsx, pdf)")
	estimateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write output to a file instead of stdout")
	estimateCmd.Flags().StringVarP(&rateFlag, "rate", "r", "", "exchange rate from source to target currency")
	estimateCmd.Flags().StringVar(&icmsFlag, "icms", "", "ICMS rate in percent (default 18)")
	estimateCmd.Flags().BoolVar(&useSample, "sample", false, "start from the two sample products and rate 0.847")
	estimateCmd.Flags().BoolVarP(&showDetails, "details", "d", false, "include the calculation breakdown")
	estimateCmd.Flags().StringArrayVarP(&productFlags, "product", "p", nil, `product as "price;quantity;weight"`)
	estimateCmd.Flags().BoolVar(&saveQuote, "save", false, "save the quote to the history")
	estimateCmd.Flags().StringVar(&quoteLabel, "label", "", "label stored with a saved quote")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := logging.Named("estimate")
	base := cfg.Calculator.Configuration()
	source := types.SourceCLI

	var q *quote.Quote
	if len(args) > 0 {
		loaded, err := quote.LoadFile(args[0])
		if err != nil {
			return err
		}
		q = loaded
		base = q.Apply(base)
		source = types.SourceFile
		logger.Debug("quote loaded", zap.String("path", args[0]), zap.Int("products", len(q.Products)))
	}

	if useSample {
		base.ExchangeRate = session.SampleExchangeRate
	}
	if cmd.Flags().Changed("rate") {
		base.ExchangeRate = money.ParseNumber(rateFlag)
	}
	if cmd.Flags().Changed("icms") {
		base.ICMSRate = money.ParseOptional(icmsFlag)
	}

	inputs, err := productInputs(productFlags)
	if err != nil {
		return err
	}
	if q != nil {
		inputs = append(q.Products, inputs...)
	}
	if useSample {
		inputs = append(session.SampleProducts(), inputs...)
	}
	if len(inputs) == 0 {
		return errors.Input("no products: pass a quote file, --product or --sample")
	}

	p := presenter(cfg)
	sess, err := session.New(base, session.WithLogger(logging.Named("session")), session.WithPresenter(p))
	if err != nil {
		return err
	}
	if _, err := sess.Import(inputs); err != nil {
		return err
	}

	snap := sess.Snapshot()
	if saveQuote {
		if err := saveToHistory(cmd, cfg, sess, snap); err != nil {
			return err
		}
	}

	report := output.NewReport(snap.Result, p, output.ReportMetadata{
		SessionID: sess.ID(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Source:    source,
		Stale:     snap.Stale,
	})

	return writeReport(cmd, cfg, report)
}

func writeReport(cmd *cobra.Command, cfg *config.Config, report *output.Report) error {
	format := output.Format(outputFormat)
	if format == "" {
		format = output.Format(cfg.Output.DefaultFormat)
	}

	var formatter output.Formatter
	if format == output.FormatCLI {
		formatter = &output.CLIFormatter{
			NoColor:     cfg.Output.NoColor || outputFile != "",
			ShowDetails: showDetails || cfg.Output.ShowDetails,
		}
	} else {
		f, err := output.DefaultRegistry().Get(format)
		if err != nil {
			return err
		}
		formatter = f
	}

	var w io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return errors.Wrapf(errors.TypeInput, err, "create %s", outputFile)
		}
		defer f.Close()
		w = f
	} else if output.IsBinary(format) {
		return errors.Newf(errors.TypeInput, "%s output needs --output", format)
	}

	if err := formatter.Render(w, report); err != nil {
		return err
	}
	if outputFile != "" {
		logging.Info("report written", zap.String("path", outputFile), zap.String("format", string(format)))
	}
	return nil
}

func saveToHistory(cmd *cobra.Command, cfg *config.Config, sess *session.Session, snap session.Snapshot) error {
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stored := storage.NewStoredQuote(quoteLabel, sess.ID(), sess.Entries(), sess.Config(), snap.Result)
	if err := store.Save(ctxOf(cmd), stored); err != nil {
		return err
	}
	logging.Info("quote saved", zap.String("id", stored.ID), zap.String("label", quoteLabel))
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved quote %s\n", stored.ID)
	return nil
}

// productInputs parses --product values of the form "price;quantity;weight".
// Quantity and weight may be omitted.
func productInputs(values []string) ([]types.ProductInput, error) {
	inputs := make([]types.ProductInput, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ";")
		if len(parts) > 3 {
			return nil, errors.Newf(errors.TypeInput, "product %q: expected price;quantity;weight", v)
		}
		in := types.ProductInput{
			Price:    strings.TrimSpace(parts[0]),
			Quantity: ledger.DefaultQuantity,
			Weight:   ledger.DefaultWeight,
		}
		if len(parts) > 1 {
			in.Quantity = money.ParseNumber(parts[1])
		}
		if len(parts) > 2 {
			in.Weight = money.ParseNumber(parts[2])
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
