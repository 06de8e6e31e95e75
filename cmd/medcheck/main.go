// Command medcheck runs dose checks offline against a medication file.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newRootCmd(out io.Writer, now func() time.Time) *cobra.Command {
	root := &cobra.Command{
		Use:           "medcheck",
		Short:         "Medication dose checks from the command line",
		Long:          `medcheck answers "should I take this now?" against a YAML medication list, without the recognizer or any storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newCheckCmd(now), newSlotCmd(now))
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
