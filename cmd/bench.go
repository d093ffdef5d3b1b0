package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cescalante/optilab/internal/bench"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "List the available benchmark functions",
	RunE:  runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDOMAIN\tDIMS\tMINIMUM")
	fmt.Fprintln(w, "----\t------\t----\t-------")

	for _, name := range bench.Names() {
		b, err := bench.Lookup(name)
		if err != nil {
			return err
		}
		dims := "any"
		if b.Dims > 0 {
			dims = fmt.Sprintf("%d", b.Dims)
		}
		fmt.Fprintf(w, "%s\t[%g, %g]\t%s\t%.6g\n", b.Name, b.Lower, b.Upper, dims, b.MinValue)
	}

	return w.Flush()
}
