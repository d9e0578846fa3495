// Package cli implements the standalone report generator: one run fetches the
// order list, keeps it in a local batch file and writes a compact report.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"orderreport/internal/batch"
	"orderreport/internal/model"
	"orderreport/internal/report"
	"orderreport/internal/service"
	"orderreport/internal/storage"
)

const (
	DefaultSourceURL = "https://api.akulov.net/api/v1/order/list/"
	// BatchKey names the batch file the CLI reuses between runs.
	BatchKey = "data"
)

type options struct {
	source   string
	batchDir string
	outDir   string
	profile  string
	timeout  time.Duration
	reuse    bool
	verbose  bool

	start   string
	end     string
	minCost string
	maxCost string
	status  string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "orderreport-cli",
		Short: "Generate an order report spreadsheet",
		Long: "Fetches the order list, filters it by date range, total cost and status " +
			"and writes the result to an .xlsx file. Criteria not given as flags are asked for interactively.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.source, "source", DefaultSourceURL, "order list URL")
	f.StringVar(&opts.batchDir, "batch-dir", ".", "directory of the "+BatchKey+".json batch file")
	f.StringVar(&opts.outDir, "out-dir", ".", "directory for the report")
	f.StringVar(&opts.profile, "profile", report.Compact.Name, "report profile: compact or detailed")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "order list request timeout")
	f.BoolVar(&opts.reuse, "reuse", false, "filter the stored batch instead of fetching")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline steps")

	f.StringVar(&opts.start, "start", "", "start date (dd.mm.yy)")
	f.StringVar(&opts.end, "end", "", "end date (dd.mm.yy)")
	f.StringVar(&opts.minCost, "min-cost", "", "minimum total cost")
	f.StringVar(&opts.maxCost, "max-cost", "", "maximum total cost")
	f.StringVar(&opts.status, "status", "", "order status or 'All'")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	profile, err := report.ProfileByName(opts.profile)
	if err != nil {
		return err
	}

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	if err := p.fill(opts); err != nil {
		return err
	}

	criteria, err := parseCriteria(opts)
	if err != nil {
		return err
	}

	batches, err := batch.NewFileStore(opts.batchDir)
	if err != nil {
		return err
	}
	reports, err := storage.NewLocal(opts.outDir)
	if err != nil {
		return err
	}

	svc := service.NewReportService(log, service.NewOrderSource(opts.source, opts.timeout), batches, reports)
	res, err := svc.Generate(cmd.Context(), service.GenerateRequest{
		Criteria: criteria,
		Profile:  profile,
		BatchID:  BatchKey,
		Reuse:    opts.reuse,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s (%d rows)\n", filepath.Join(opts.outDir, res.FileName), res.Rows)
	return nil
}

func parseCriteria(opts *options) (model.Criteria, error) {
	minCost, err := parseCost("minimum", opts.minCost)
	if err != nil {
		return model.Criteria{}, err
	}
	maxCost, err := parseCost("maximum", opts.maxCost)
	if err != nil {
		return model.Criteria{}, err
	}
	return report.ParseCriteria(opts.start, opts.end, minCost, maxCost, opts.status)
}

func parseCost(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s total cost %q is not a number", report.ErrInvalidCriteria, name, value)
	}
	return d, nil
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// fill asks for every criterion that was not given as a flag.
func (p *prompter) fill(opts *options) error {
	questions := []struct {
		prompt string
		value  *string
	}{
		{"Enter start date (dd.mm.yy): ", &opts.start},
		{"Enter end date (dd.mm.yy): ", &opts.end},
		{"Enter minimum total cost: ", &opts.minCost},
		{"Enter maximum total cost: ", &opts.maxCost},
		{"Enter the status of the order or 'All' for all statuses: ", &opts.status},
	}

	for _, q := range questions {
		if *q.value != "" {
			continue
		}
		answer, err := p.ask(q.prompt)
		if err != nil {
			return err
		}
		*q.value = answer
	}
	return nil
}

func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
