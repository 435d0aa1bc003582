package cli

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cyclesearch/pkg/count"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
)

// countFlags holds the flags shared by the count subcommands.
type countFlags struct {
	nScans     int
	blocks     int
	ctpFile    string
	lastZero   bool
	noInverse  bool
	lengths    []int
	maxFactors int
}

// countCommand creates the count command with one subcommand per family.
func (c *CLI) countCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the candidate cycles of a search space",
		Long: `Count the candidate cycles of a search space in closed form.

The counts match what a search visits under the no-inverse and last-zero
policies. Common-factor filtering has no closed form and is not counted.
The number of blocks is given with --blocks or read from a descriptor
with --ctp.`,
	}

	cmd.AddCommand(c.countCogwheelCommand())
	cmd.AddCommand(c.countNestedCommand())
	cmd.AddCommand(c.countNestcogCommand())

	return cmd
}

func (f *countFlags) register(cmd *cobra.Command, policy bool) {
	cmd.Flags().IntVarP(&f.nScans, "scans", "N", 0, "number of scans")
	cmd.Flags().IntVarP(&f.blocks, "blocks", "b", 0, "number of pulse blocks")
	cmd.Flags().StringVar(&f.ctpFile, "ctp", "", "read the number of blocks from a descriptor")
	if policy {
		cmd.Flags().BoolVar(&f.lastZero, "last-zero", false, "pin the last block to winding 0")
		cmd.Flags().BoolVar(&f.noInverse, "no-inverse", true, "count each inversion pair once")
	}
}

// resolveBlocks fills blocks from the descriptor when --ctp is given.
func (f *countFlags) resolveBlocks() error {
	if f.ctpFile == "" {
		return nil
	}
	d, err := ctp.Load(f.ctpFile)
	if err != nil {
		return fmt.Errorf("load descriptor %s: %w", f.ctpFile, err)
	}
	if f.blocks == 0 {
		f.blocks = d.Blocks()
	}
	return nil
}

func (c *CLI) countCogwheelCommand() *cobra.Command {
	var flags countFlags
	cmd := &cobra.Command{
		Use:   "cogwheel",
		Short: "Count cogwheel cycles of N scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.resolveBlocks(); err != nil {
				return err
			}
			n, err := count.Cogwheels(flags.nScans, flags.blocks, flags.lastZero, flags.noInverse)
			if err != nil {
				return err
			}
			printCount(fmt.Sprintf("cogwheel cycles of %d scans over %d blocks", flags.nScans, flags.blocks), n)
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (c *CLI) countNestedCommand() *cobra.Command {
	var flags countFlags
	cmd := &cobra.Command{
		Use:   "nested",
		Short: "Count nested cycles of N scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.resolveBlocks(); err != nil {
				return err
			}
			n, err := count.Nested(flags.nScans, flags.blocks)
			if err != nil {
				return err
			}
			printCount(fmt.Sprintf("nested cycles of %d scans over %d blocks", flags.nScans, flags.blocks), n)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func (c *CLI) countNestcogCommand() *cobra.Command {
	var flags countFlags
	cmd := &cobra.Command{
		Use:   "nestcog",
		Short: "Count nested cogwheel cycles of N scans or of given sub-cycle lengths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.resolveBlocks(); err != nil {
				return err
			}
			var (
				n    *big.Int
				err  error
				what string
			)
			if len(flags.lengths) > 0 {
				n, err = count.Nestcogs(flags.lengths, flags.blocks, flags.lastZero, flags.noInverse)
				what = fmt.Sprintf("nested cogwheel cycles with lengths %v over %d blocks", flags.lengths, flags.blocks)
			} else {
				n, err = count.NestcogsTotal(flags.nScans, flags.blocks, flags.lastZero, flags.noInverse, flags.maxFactors)
				what = fmt.Sprintf("nested cogwheel cycles of %d scans over %d blocks", flags.nScans, flags.blocks)
			}
			if err != nil {
				return err
			}
			printCount(what, n)
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().IntSliceVar(&flags.lengths, "lengths", nil, "sub-cycle lengths, e.g. 2,3 (instead of --scans)")
	cmd.Flags().IntVar(&flags.maxFactors, "max-factors", 0, "maximum number of sub-cycles, 0 for no limit")
	cmd.MarkFlagsMutuallyExclusive("scans", "lengths")
	return cmd
}

func printCount(what string, n *big.Int) {
	printSuccess("%s %s", StyleNumber.Render(n.String()), what)
}

// predictCommand creates the predict command.
func (c *CLI) predictCommand() *cobra.Command {
	var (
		p0          []int
		pmax        []int
		symmetrical bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the minimal cogwheel cycle selecting a single pathway",
		Long: `Predict the minimal cogwheel cycle selecting a single pathway.

--p0 gives the coherence order between consecutive blocks of the wanted
pathway and --pmax the largest coherence order allowed at each position
(one value applies to every position). The prediction follows the cogwheel
conjectures of Hughes, Carravetta and Levitt.`,
		Example: `  cyclesearch predict --p0 1,2 --pmax 2
  cyclesearch predict --p0=-1,1 --pmax 1 --symmetrical`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := count.PredictCogwheel(p0, pmax, symmetrical)
			if err != nil {
				return err
			}
			if p.Exact {
				printSuccess("%s scans, winding differences %s", StyleNumber.Render(fmt.Sprint(p.NScans)), formatInts(p.Differences))
			} else {
				printWarning("%d scans predicted; the winding differences share a divisor, so no cycle is constructed", p.NScans)
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&p0, "p0", nil, "coherence orders of the wanted pathway")
	cmd.Flags().IntSliceVar(&pmax, "pmax", nil, "largest coherence order per position")
	cmd.Flags().BoolVar(&symmetrical, "symmetrical", false, "also select the mirrored pathway")
	_ = cmd.MarkFlagRequired("p0")
	_ = cmd.MarkFlagRequired("pmax")

	return cmd
}
