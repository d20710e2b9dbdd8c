// Command iftsegment computes an incremental font transfer glyph
// segmentation plan for a font and a set of requested segments.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/telemetry"
)

var (
	configPath string
	verbose    bool
	log        telemetry.Logger
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "iftsegment",
		Short: "Compute incremental font transfer glyph segmentation plans",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file overriding defaults")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log = telemetry.New(os.Stderr, logrus.DebugLevel)
		} else {
			log = telemetry.New(os.Stderr, logrus.InfoLevel)
		}
	}

	root.AddCommand(newPlanCommand())
	root.AddCommand(newDescribeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		switch {
		case ifterr.OfKind(err, ifterr.InvalidArgument):
			code = 2
		case ifterr.OfKind(err, ifterr.ClosureError):
			code = 3
		case ifterr.OfKind(err, ifterr.FailedPrecondition):
			code = 4
		}
		os.Exit(code)
	}
}
