package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
	"github.com/matzehuels/cyclesearch/pkg/phases"
	"github.com/matzehuels/cyclesearch/pkg/pipeline"
)

// phasesOpts holds the flags of the phases command.
type phasesOpts struct {
	run      string
	archive  string
	ctpFile  string
	unit     string
	cycle    int
	receiver bool
	cost     bool
	json     bool
}

// phasesCommand creates the phases command for printing phase tables.
func (c *CLI) phasesCommand() *cobra.Command {
	opts := phasesOpts{unit: string(phases.Degrees), cycle: 1}

	cmd := &cobra.Command{
		Use:   "phases [result.json]",
		Short: "Print the phase table of a found cycle",
		Long: `Print the phase table of a found cycle, one row per scan and one column
per pulse block.

The cycle is read from a result file written with --json or from an
archived run with --run. With --receiver the receiver phase that follows
the first wanted pathway is added as a last column. With --cost the mean
squared distance of every pathway signal from its target is printed; a
valid cycle scores 0.`,
		Example: `  cyclesearch cogwheel dqf.json --json > dqf.result.json
  cyclesearch phases dqf.result.json --unit deg
  cyclesearch phases --run 3f2c9a4e-... --receiver`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return c.runPhases(cmd, file, opts)
		},
	}

	cmd.Flags().StringVar(&opts.run, "run", "", "archived run ID")
	cmd.Flags().StringVar(&opts.archive, "archive", "", "archive URI (default: the configured archive)")
	cmd.Flags().StringVar(&opts.ctpFile, "ctp", "", "descriptor for --receiver when reading a result file")
	cmd.Flags().StringVarP(&opts.unit, "unit", "u", opts.unit, "phase unit: n_scans, rad, deg, turn")
	cmd.Flags().IntVar(&opts.cycle, "cycle", opts.cycle, "which cycle of the result, starting at 1")
	cmd.Flags().BoolVar(&opts.receiver, "receiver", false, "add the receiver phase column")
	cmd.Flags().BoolVar(&opts.cost, "cost", false, "print the selectivity cost of the cycle")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the table as JSON")

	return cmd
}

func (c *CLI) runPhases(cmd *cobra.Command, file string, opts phasesOpts) error {
	unit, err := phases.ParseUnit(opts.unit)
	if err != nil {
		return err
	}

	var (
		res *search.Result
		d   *ctp.Descriptor
	)
	switch {
	case opts.run != "" && file != "":
		return cerrors.New(cerrors.ErrCodeInvalidInput, "give either a result file or --run, not both")
	case opts.run != "":
		cfg, err := loadUserConfig()
		if err != nil {
			return err
		}
		store, err := openArchive(cmd.Context(), cfg, opts.archive)
		if err != nil {
			return err
		}
		defer store.Close()
		rec, err := store.Get(cmd.Context(), opts.run)
		if err != nil {
			return err
		}
		res = &search.Result{Family: search.Family(rec.Family), Cycles: rec.Cycles, NScans: rec.NScans, LastZero: rec.LastZero}
		d = rec.Descriptor
	case file != "":
		if res, err = readResultFile(file); err != nil {
			return err
		}
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "a result file or --run is required")
	}
	if opts.ctpFile != "" {
		if d, err = ctp.Load(opts.ctpFile); err != nil {
			return fmt.Errorf("load descriptor %s: %w", opts.ctpFile, err)
		}
	}

	if !res.Found() {
		return cerrors.New(cerrors.ErrCodeNotFound, "the result has no cycles")
	}
	if opts.cycle < 1 || opts.cycle > len(res.Cycles) {
		return cerrors.Range("cycle must be in [1,%d], got %d", len(res.Cycles), opts.cycle)
	}
	cycle := res.Cycles[opts.cycle-1]

	blocks := 0
	if d != nil {
		blocks = d.Blocks()
	}
	steps, err := cycleSteps(res.Family, cycle, blocks)
	if err != nil {
		return err
	}
	table := steps.Convert(unit)

	var rx []int
	if opts.receiver {
		if d == nil {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "--receiver needs a descriptor; pass --ctp")
		}
		if rx, err = steps.Receiver(d.Pathways[0]); err != nil {
			return err
		}
	}

	var cost *float64
	if opts.cost {
		if d == nil {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "--cost needs a descriptor; pass --ctp")
		}
		obj, err := phases.NewObjective(d.Pathways, d.Wanted)
		if err != nil {
			return err
		}
		v, err := obj.Free(steps.Convert(phases.Radians))
		if err != nil {
			return err
		}
		if v < 1e-12 {
			v = 0 // rounding noise of a valid cycle
		}
		cost = &v
	}

	if opts.json {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(phaseTable{Unit: unit, NScans: steps.N, Phases: table, Receiver: convertReceiver(rx, steps.N, unit), Cost: cost})
	}
	printPhaseTable(res.Family, cycle, steps.N, unit, table, convertReceiver(rx, steps.N, unit))
	if cost != nil {
		printDetail("Selectivity cost %s", formatPhase(*cost))
	}
	return nil
}

// phaseTable is the JSON form of a phase table.
type phaseTable struct {
	Unit     phases.Unit `json:"unit"`
	NScans   int         `json:"n_scans"`
	Phases   [][]float64 `json:"phases"`
	Receiver []float64   `json:"receiver,omitempty"`
	Cost     *float64    `json:"cost,omitempty"`
}

// readResultFile reads a result written by a search command with --json,
// or a bare engine result.
func readResultFile(path string) (*search.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.New(cerrors.ErrCodeFileNotFound, "file not found: %s", path)
		}
		return nil, err
	}
	var wrapped pipeline.Result
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	if wrapped.Search != nil {
		return wrapped.Search, nil
	}
	var res search.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	if res.Family == "" {
		return nil, cerrors.New(cerrors.ErrCodeInvalidFormat, "%s is not a search result", path)
	}
	return &res, nil
}

// cycleSteps builds the integer phase table of one cycle. blocks is only
// needed for nested cycles; zero derives it from the block subsets.
func cycleSteps(f search.Family, cycle search.Cycle, blocks int) (phases.Steps, error) {
	switch f {
	case search.FamilyCogwheel:
		return phases.CogwheelSteps(cycle.Windings, cycle.NScans)
	case search.FamilyNestcog:
		return phases.NestcogSteps(cycle.Rows, cycle.Lengths)
	case search.FamilyNested:
		if blocks == 0 {
			for _, sub := range cycle.Blocks {
				for _, b := range sub {
					blocks = max(blocks, b+1)
				}
			}
		}
		return phases.NestedSteps(cycle.Lengths, cycle.Blocks, blocks)
	}
	_, err := search.ParseFamily(string(f))
	return phases.Steps{}, err
}

func convertReceiver(rx []int, n int, unit phases.Unit) []float64 {
	if rx == nil {
		return nil
	}
	s := phases.Steps{N: n, Phases: [][]int{rx}}
	return s.Convert(unit)[0]
}

func printPhaseTable(f search.Family, cycle search.Cycle, n int, unit phases.Unit, table [][]float64, rx []float64) {
	desc := formatInts(cycle.Windings)
	switch f {
	case search.FamilyNestcog:
		desc = formatInts(cycle.Lengths) + " " + formatRows(cycle.Rows)
	case search.FamilyNested:
		desc = formatInts(cycle.Lengths) + " " + formatRows(cycle.Blocks)
	}
	printInfo("%s cycle %s, %d scans, phases in %s", f, desc, n, unit)

	var headers []string
	headers = append(headers, "Scan")
	if len(table) > 0 {
		for b := range table[0] {
			headers = append(headers, fmt.Sprintf("B%d", b+1))
		}
	}
	if rx != nil {
		headers = append(headers, "Rx")
	}

	rows := make([][]string, len(table))
	for s, phase := range table {
		row := []string{strconv.Itoa(s)}
		for _, p := range phase {
			row = append(row, formatPhase(p))
		}
		if rx != nil {
			row = append(row, formatPhase(rx[s]))
		}
		rows[s] = row
	}
	fmt.Fprintln(output, newTable(headers, rows).Render())
}

func formatPhase(p float64) string {
	return strconv.FormatFloat(p, 'g', 6, 64)
}
