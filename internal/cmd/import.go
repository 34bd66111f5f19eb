package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifp/vicidial-cli/internal/api"
	"github.com/ifp/vicidial-cli/internal/config"
	"github.com/ifp/vicidial-cli/internal/dryrun"
	"github.com/ifp/vicidial-cli/internal/iocontext"
	"github.com/ifp/vicidial-cli/internal/leads"
	"github.com/ifp/vicidial-cli/internal/metrics"
	"github.com/ifp/vicidial-cli/internal/outfmt"
)

// importResult is the per-lead line of an import report.
type importResult struct {
	Line    int             `json:"line"`
	Outcome api.Outcome     `json:"outcome"`
	CallID  string          `json:"call_id,omitempty"`
	Body    string          `json:"body,omitempty"`
	Error   string          `json:"error,omitempty"`
	Skipped bool            `json:"skipped,omitempty"`
	Preview *dryrun.Preview `json:"preview,omitempty"`
}

type importSummary struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
	DryRun    bool           `json:"dry_run,omitempty"`
	Results   []importResult `json:"results"`
}

func newImportCmd() *cobra.Command {
	var (
		conn            connectionFlags
		action          string
		format          string
		concurrency     int
		rawDefaults     []string
		metricsTextfile string
		progress        bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add leads in bulk from a YAML or CSV file",
		Long: strings.TrimSpace(`
Send one API call per lead in a YAML or CSV file, several at a time.

YAML files may carry a defaults mapping applied to every lead. --param
values act as further defaults for fields a lead does not set.

With --metrics-textfile the call counters and latency histogram are written
in Prometheus text format for the node_exporter textfile collector.
`),
		Example: strings.TrimSpace(`
  vicidial import leads.csv --param list_id=30000 --param source=crm
  vicidial import leads.yaml --concurrency 10 --metrics-textfile /var/lib/node_exporter/vicidial.prom
  vicidial import leads.yaml --dry-run -o json
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 || concurrency > MaxConcurrency {
				return fmt.Errorf("--concurrency must be between 1 and %d", MaxConcurrency)
			}
			var leadFormat leads.Format
			if format != "" {
				f, err := leads.ParseFormat(format)
				if err != nil {
					return err
				}
				leadFormat = f
			}
			batch, err := leads.Load(args[0], leadFormat)
			if err != nil {
				return err
			}
			defaults, err := parseParams(rawDefaults)
			if err != nil {
				return err
			}
			s, err := conn.settings()
			if err != nil {
				return err
			}
			if err := api.NewRequestBuilder().SetAction(api.Action(action)); err != nil {
				return err
			}

			ctx := cmd.Context()
			ioStreams := iocontext.GetIO(ctx)
			dryRun := dryrun.IsEnabled(ctx)

			var recorder *metrics.Recorder
			if !dryRun {
				if recorder, err = metrics.NewRecorder(); err != nil {
					return err
				}
			}

			showProgress := progress && !isJSON(cmd) && !flags.Quiet && !flags.Silent
			results := runBulkOperation(ctx, batch, int64(concurrency), showProgress, ioStreams.ErrOut,
				func(ctx context.Context, lead leads.Lead) (importResult, error) {
					return importLead(ctx, s, api.Action(action), lead.WithDefaults(defaults), recorder, dryRun)
				})

			summary := importSummary{Total: len(batch), DryRun: dryRun}
			summary.Succeeded, summary.Failed, summary.Skipped = countResults(results)
			for _, r := range results {
				data := r.Data
				if r.Skipped {
					data = importResult{Line: batch[r.Index].Line, Skipped: true, Error: r.Error.Error()}
				}
				summary.Results = append(summary.Results, data)
			}

			if recorder != nil && metricsTextfile != "" {
				if err := recorder.WriteTextfile(metricsTextfile); err != nil {
					return err
				}
			}

			if err := writeImportSummary(cmd, summary); err != nil {
				return err
			}
			if summary.Skipped > 0 {
				return fmt.Errorf("import interrupted: %d of %d leads not sent: %w", summary.Skipped, summary.Total, ctx.Err())
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d leads failed", summary.Failed, summary.Total)
			}
			return nil
		}),
	}

	conn.register(cmd)
	cmd.Flags().StringVar(&action, "action", string(api.ActionAddLead), "API function to call for each lead")
	cmd.Flags().StringVar(&format, "format", "", "Lead file format: yaml|csv (default from extension)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", DefaultConcurrency, "Number of calls in flight")
	cmd.Flags().StringArrayVar(&rawDefaults, "param", nil, "Default parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&progress, "progress", true, "Show progress on stderr")
	flagAlias(cmd.Flags(), "concurrency", "workers")
	return cmd
}

// importLead runs one lead through its own gateway.
func importLead(ctx context.Context, s config.Settings, action api.Action, lead leads.Lead, recorder *metrics.Recorder, dryRun bool) (importResult, error) {
	res := importResult{Line: lead.Line}
	fail := func(err error) (importResult, error) {
		res.Error = err.Error()
		slog.Warn("lead failed", "line", lead.Line, "error", err)
		return res, err
	}

	g := newGateway(s)
	if recorder != nil {
		g.SetObserver(recorder)
	}
	if err := g.SetAction(action); err != nil {
		return fail(err)
	}
	if err := g.AddParams(lead.Params...); err != nil {
		return fail(err)
	}

	if dryRun {
		preview, err := previewOf(g)
		if err != nil {
			return fail(err)
		}
		res.Preview = preview
		return res, nil
	}

	if _, err := g.Invoke(ctx); err != nil {
		return fail(err)
	}
	outcome, err := g.LastOutcome()
	if err != nil {
		return fail(err)
	}
	res.Outcome = outcome.Outcome
	res.CallID = outcome.CallID
	res.Body = strings.TrimRight(outcome.Body, "\r\n")
	if err := outcome.Err(); err != nil {
		res.Error = err.Error()
		return res, err
	}
	return res, nil
}

func writeImportSummary(cmd *cobra.Command, summary importSummary) error {
	if isJSON(cmd) {
		return printJSON(cmd, summary)
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	f := outfmt.NewFormatter(cmd.Context(), ioStreams.Out)
	if summary.DryRun {
		f.StartTable([]string{"LINE", "URI"})
		for _, r := range summary.Results {
			uri := r.Error
			if r.Preview != nil {
				uri = r.Preview.URI
			}
			f.Row(strconv.Itoa(r.Line), uri)
		}
	} else {
		f.StartTable([]string{"LINE", "OUTCOME", "CALL_ID", "MESSAGE"})
		for _, r := range summary.Results {
			msg := r.Body
			if msg == "" {
				msg = r.Error
			}
			f.Row(strconv.Itoa(r.Line), r.Outcome.String(), r.CallID, msg)
		}
	}
	if err := f.EndTable(); err != nil {
		return err
	}

	verb := "Imported"
	if summary.DryRun {
		verb = "Compiled"
	}
	_, _ = fmt.Fprintf(ioStreams.ErrOut, "%s %d/%d leads\n", verb, summary.Succeeded, summary.Total)
	if summary.Skipped > 0 {
		_, _ = fmt.Fprintf(ioStreams.ErrOut, "Skipped %d leads (interrupted)\n", summary.Skipped)
	}
	return nil
}
