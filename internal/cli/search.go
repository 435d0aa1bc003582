package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	"github.com/matzehuels/cyclesearch/pkg/pipeline"
)

// searchFamilies are registered as top-level commands in this order.
var searchFamilies = []search.Family{
	search.FamilyCogwheel,
	search.FamilyNested,
	search.FamilyNestcog,
}

var familyShort = map[search.Family]string{
	search.FamilyCogwheel: "Search for minimal cogwheel phase cycles",
	search.FamilyNested:   "Search for minimal nested phase cycles",
	search.FamilyNestcog:  "Search for minimal nested cogwheel phase cycles",
}

var familyLong = map[search.Family]string{
	search.FamilyCogwheel: `Search for the shortest cogwheel phase cycles for a descriptor.

A cogwheel cycle of N scans assigns each block a winding number w; scan s
sets the block phase to 2π·s·w/N. The search tries N from --min to --max
and stops at the first N that admits a cycle.`,
	search.FamilyNested: `Search for the shortest nested phase cycles for a descriptor.

A nested cycle is a product of sub-cycles. Each sub-cycle of length L steps
a subset of blocks by 2π/L. The total scan count is the product of the
sub-cycle lengths.`,
	search.FamilyNestcog: `Search for the shortest nested cogwheel phase cycles for a descriptor.

A nested cogwheel cycle is a product of cogwheel sub-cycles, one winding
row per sub-cycle. By default cycles with common factors among the
windings or with the scan count are skipped.`,
}

// searchFlags holds the command-line flags of a search command.
type searchFlags struct {
	backendOpts

	noInverse    bool
	lastZero     bool
	noLastZero   bool
	noCFScans    bool
	noCFWindings bool

	nFind      int
	min        int
	max        int
	maxFactors int

	workers  int
	bufferMB int

	tui     bool
	json    bool
	refresh bool
}

// searchCommand creates the search command for one cycle family.
func (c *CLI) searchCommand(f search.Family) *cobra.Command {
	var flags searchFlags
	defaults := search.DefaultOptions(f, pipeline.DefaultMaxScans)

	cmd := &cobra.Command{
		Use:   string(f) + " <ctp-file>",
		Short: familyShort[f],
		Long:  familyLong[f],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadUserConfig()
			if err != nil {
				return err
			}
			opts := flags.options(f, cfg)
			return c.runSearch(cmd.Context(), args[0], opts, cfg, flags)
		},
	}

	fs := cmd.Flags()

	// Policy flags; nested cycles have no winding numbers to restrict.
	if f != search.FamilyNested {
		fs.BoolVar(&flags.noInverse, "no-inverse", defaults.Policy.NoInverse, "skip cycles whose negated windings were already tried")
		fs.BoolVar(&flags.lastZero, "last-zero", false, "pin the last block to winding 0")
		fs.BoolVar(&flags.noLastZero, "no-last-zero", false, "never pin the last block (default: detect from the pathways)")
		fs.BoolVar(&flags.noCFScans, "no-cf-scans", defaults.Policy.NoCommonFactorWithScans, "skip windings sharing a factor with the scan count")
		fs.BoolVar(&flags.noCFWindings, "no-cf-windings", defaults.Policy.NoCommonFactorAmongWindings, "skip windings sharing a common factor")
		cmd.MarkFlagsMutuallyExclusive("last-zero", "no-last-zero")
	}

	// Range flags
	fs.IntVarP(&flags.nFind, "n-find", "n", defaults.NFind, "number of cycles to return")
	fs.IntVar(&flags.min, "min", defaults.MinScans, "smallest number of scans to try")
	fs.IntVar(&flags.max, "max", 0, fmt.Sprintf("largest number of scans to try (default %d)", pipeline.DefaultMaxScans))
	if f != search.FamilyCogwheel {
		fs.IntVar(&flags.maxFactors, "max-factors", 0, "maximum number of sub-cycles, 0 for no limit")
	}

	// Performance flags
	fs.IntVarP(&flags.workers, "workers", "j", 0, "parallel workers (default: number of CPUs)")
	fs.IntVar(&flags.bufferMB, "buffer-mb", 0, fmt.Sprintf("candidate buffer size in MiB (default %d)", search.DefaultBufferBytes>>20))

	// Backend flags
	fs.BoolVar(&flags.noCache, "no-cache", false, "disable result caching")
	fs.BoolVar(&flags.refresh, "refresh", false, "ignore cached results and search again")
	fs.StringVar(&flags.redis, "redis", "", "cache results in Redis at this address")
	fs.StringVar(&flags.archive, "archive", "", "archive URI: a JSONL file path or mongodb:// URI")
	fs.BoolVar(&flags.noArchive, "no-archive", false, "do not record the run in the archive")

	// Output flags
	fs.BoolVar(&flags.tui, "tui", false, "show a live search monitor")
	fs.BoolVar(&flags.json, "json", false, "print the result as JSON")

	return cmd
}

// options converts flags and config defaults into pipeline options. The
// descriptor is filled in by runSearch.
func (f *searchFlags) options(family search.Family, cfg Config) pipeline.Options {
	opts := pipeline.NewOptions(family, nil)
	so := &opts.Search

	so.MinScans = f.min
	so.MaxScans = f.max
	if so.MaxScans == 0 {
		so.MaxScans = cfg.MaxScans
	}
	so.NFind = f.nFind
	so.MaxFactors = f.maxFactors

	if family != search.FamilyNested {
		so.Policy.NoInverse = f.noInverse
		so.Policy.NoCommonFactorWithScans = f.noCFScans
		so.Policy.NoCommonFactorAmongWindings = f.noCFWindings
		switch {
		case f.lastZero:
			so.LastZero = boolPtr(true)
		case f.noLastZero:
			so.LastZero = boolPtr(false)
		}
	}

	so.Workers = f.workers
	if so.Workers == 0 {
		so.Workers = cfg.Workers
	}
	mb := f.bufferMB
	if mb == 0 {
		mb = cfg.BufferMB
	}
	so.BufferBytes = mb << 20

	opts.Refresh = f.refresh
	return opts
}

// runSearch loads the descriptor, runs the search and prints the result.
func (c *CLI) runSearch(ctx context.Context, input string, opts pipeline.Options, cfg Config, flags searchFlags) error {
	d, err := ctp.Load(input)
	if err != nil {
		return fmt.Errorf("load descriptor %s: %w", input, err)
	}
	opts.Descriptor = d
	opts.Search.Verbosity = c.Verbosity

	runner, err := c.newRunner(ctx, cfg, flags.backendOpts)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var res *pipeline.Result
	switch {
	case flags.tui:
		res, err = c.runSearchTUI(ctx, runner, opts)
	case flags.json:
		res, err = runner.Execute(ctx, opts)
	default:
		res, err = c.runSearchSpinner(ctx, runner, opts)
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if flags.json {
		return writeResultJSON(output, res)
	}
	printResult(d, res)
	return nil
}

func (c *CLI) runSearchSpinner(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	// Log lines would be overwritten by the spinner.
	if c.Logger.GetLevel() <= log.InfoLevel {
		return runner.Execute(ctx, opts)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching %s cycles...", opts.Family))
	next := opts.Search.Progress
	opts.Search.Progress = func(p search.Progress) {
		if p.Event == search.EventScan {
			spinner.SetMessage(fmt.Sprintf("Searching %s cycles of %d scans (max %d)...", p.Family, p.NScans, p.MaxScans))
		}
		if next != nil {
			next(p)
		}
	}
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Search failed")
		return nil, err
	}
	spinner.Stop()
	return res, nil
}

func writeResultJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func boolPtr(b bool) *bool { return &b }
