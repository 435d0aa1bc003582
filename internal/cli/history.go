package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cyclesearch/pkg/archive"
	"github.com/matzehuels/cyclesearch/pkg/core/search"
)

// historyCommand creates the history command for browsing archived runs.
func (c *CLI) historyCommand() *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived search runs",
		Long: `Browse archived search runs.

Every search is recorded in the archive unless --no-archive is given. The
archive is a JSONL file in the data directory by default, or the URI set
with --archive, the config file or CYCLESEARCH_ARCHIVE.`,
	}
	cmd.PersistentFlags().StringVar(&uri, "archive", "", "archive URI (default: the configured archive)")

	cmd.AddCommand(c.historyListCommand(&uri))
	cmd.AddCommand(c.historyShowCommand(&uri))

	return cmd
}

func withArchive(ctx context.Context, uri string, fn func(archive.Store) error) error {
	cfg, err := loadUserConfig()
	if err != nil {
		return err
	}
	store, err := openArchive(ctx, cfg, uri)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) historyListCommand(uri *string) *cobra.Command {
	var (
		filter archive.Filter
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.Family != "" {
				f, err := search.ParseFamily(filter.Family)
				if err != nil {
					return err
				}
				filter.Family = string(f)
			}
			return withArchive(cmd.Context(), *uri, func(store archive.Store) error {
				p := newProgress(loggerFromContext(cmd.Context()))
				runs, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				p.done(fmt.Sprintf("Loaded %d runs", len(runs)))
				if asJSON {
					enc := json.NewEncoder(output)
					enc.SetIndent("", "  ")
					return enc.Encode(runs)
				}
				printRuns(runs)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Family, "family", "", "only runs of this family")
	cmd.Flags().StringVar(&filter.DescriptorHash, "hash", "", "only runs of the descriptor with this hash")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of runs, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the runs as JSON")

	return cmd
}

func (c *CLI) historyShowCommand(uri *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd.Context(), *uri, func(store archive.Store) error {
				rec, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(output)
					enc.SetIndent("", "  ")
					return enc.Encode(rec)
				}
				printRecord(rec)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")

	return cmd
}

func printRuns(runs []*archive.Record) {
	if len(runs) == 0 {
		printInfo("No archived runs")
		return
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		outcome := fmt.Sprintf("%d × %d scans", len(r.Cycles), r.NScans)
		if r.Exhausted {
			outcome = fmt.Sprintf("none ≤ %d", r.MaxScans)
		}
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("Jan 2 15:04"),
			r.Family,
			r.Name,
			outcome,
			r.Duration.Round(time.Millisecond).String(),
		}
	}
	fmt.Fprintln(output, newTable([]string{"Run", "Created", "Family", "Name", "Cycles", "Time"}, rows).Render())
	printNextStep("Details", appName+" history show <run-id>")
}

func printRecord(r *archive.Record) {
	fmt.Fprintln(output, StyleTitle.Render("Run "+r.ID))
	printKeyValue("Created", r.CreatedAt.Local().Format(time.RFC3339))
	printKeyValue("Family", r.Family)
	if r.Name != "" {
		printKeyValue("Name", r.Name)
	}
	printKeyValue("Descriptor", r.DescriptorHash)
	printKeyValue("Scans", fmt.Sprintf("%d to %d", r.MinScans, r.MaxScans))
	printKeyValue("Policy", r.Policy)
	printKeyValue("Candidates", fmt.Sprint(r.Candidates))
	printKeyValue("Duration", r.Duration.Round(time.Millisecond).String())
	printNewline()

	res := &search.Result{Family: search.Family(r.Family), Cycles: r.Cycles, NScans: r.NScans, LastZero: r.LastZero, Exhausted: r.Exhausted}
	if !res.Found() {
		printWarning("No cycle up to %d scans", r.MaxScans)
		return
	}
	printSuccess("%d %s with %d scans", len(r.Cycles), plural(len(r.Cycles), "cycle", "cycles"), r.NScans)
	fmt.Fprintln(output, cycleTable(res))
	printNextStep("Phase table", fmt.Sprintf("%s phases --run %s", appName, r.ID))
}
