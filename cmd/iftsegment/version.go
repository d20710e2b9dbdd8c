package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at release build time; left at "dev" for
// local builds.
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the iftsegment version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}
