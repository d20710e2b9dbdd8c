package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/planproto"
)

func newDescribeCommand() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print a human-readable summary of a binary plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(planPath)
			if err != nil {
				return ifterr.Wrap("describe", ifterr.InvalidArgument, err, "reading plan %q", planPath)
			}
			decoded, err := planproto.Decode(data)
			if err != nil {
				return err
			}

			fmt.Printf("patches: %d\n", len(decoded.Patches))
			for i, p := range decoded.Patches {
				fmt.Printf("  patch %d: %d glyphs\n", i, p.Len())
			}
			fmt.Printf("activation entries: %d\n", len(decoded.Entries))
			for i, e := range decoded.Entries {
				fmt.Printf("  entry %d: segments=%v composed_of=%v patch=%d\n", i, e.Segments.Values(), e.ComposedOf, e.PatchID)
			}
			fmt.Printf("initial font glyphs: %d\n", decoded.InitFontGlyphs.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to a binary plan file produced by the plan command")
	cmd.MarkFlagRequired("plan")
	return cmd
}
