package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ift/segmenter/config"
	"github.com/go-ift/segmenter/encoder"
	"github.com/go-ift/segmenter/font"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/ot"
	"github.com/go-ift/segmenter/patch"
	"github.com/go-ift/segmenter/patchsize"
	"github.com/go-ift/segmenter/planproto"
	"github.com/go-ift/segmenter/segment"
)

func newPlanCommand() *cobra.Command {
	var (
		fontPath         string
		segmentsPath     string
		outputPath       string
		minGroupSize     int
		networkOverhead  int
		cutoffFraction   float64
		compressionLevel int
		skipOracle       bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute a glyph segmentation plan for a font",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			if cmd.Flags().Changed("minimum-group-size") {
				cfg.MinimumGroupSize = minGroupSize
			}
			if cmd.Flags().Changed("network-overhead-bytes") {
				cfg.NetworkOverheadBytes = networkOverhead
			}
			if cmd.Flags().Changed("optimization-cutoff-fraction") {
				cfg.OptimizationCutoffFraction = cutoffFraction
			}
			if cmd.Flags().Changed("estimate-compression-quality") {
				cfg.EstimateCompressionQuality = compressionLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := os.ReadFile(fontPath)
			if err != nil {
				return ifterr.Wrap("plan", ifterr.InvalidArgument, err, "reading font %q", fontPath)
			}
			parsedFont, err := ot.ParseFont(data, 0)
			if err != nil {
				return ifterr.Wrap("plan", ifterr.InvalidArgument, err, "parsing font %q", fontPath)
			}
			subsetter, err := font.New(parsedFont)
			if err != nil {
				return err
			}

			initial, segments, err := loadSegments(segmentsPath)
			if err != nil {
				return err
			}
			info := segment.NewInfo(initial, segments)

			diff := patch.NewGlyphKeyedDiff(subsetter)
			sizes := patchsize.NewExact(diff, cfg.EstimateCompressionQuality)

			seg, err := encoder.New(subsetter, info, subsetter.GlyphCount(), cfg.SegmenterConfig(!skipOracle), log)
			if err != nil {
				return err
			}

			plan, entries, err := seg.Segment(sizes)
			if err != nil {
				return err
			}

			log.With("patches", len(plan.Patches)).With("entries", len(entries)).Info("segmentation complete")

			wire := planproto.Encode(plan, entries)
			if outputPath == "" || outputPath == "-" {
				_, err = os.Stdout.Write(wire)
				return err
			}
			return os.WriteFile(outputPath, wire, 0o644)
		},
	}

	cmd.Flags().StringVar(&fontPath, "font", "", "path to the OpenType font")
	cmd.Flags().StringVar(&segmentsPath, "segments", "", "path to the YAML segments file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "path to write the binary plan to, or - for stdout")
	cmd.Flags().IntVar(&minGroupSize, "minimum-group-size", 0, "minimum glyph count for a standalone patch")
	cmd.Flags().IntVar(&networkOverhead, "network-overhead-bytes", 0, "assumed fixed per-request overhead in bytes")
	cmd.Flags().Float64Var(&cutoffFraction, "optimization-cutoff-fraction", 0, "stop merging once this fraction of segments remain")
	cmd.Flags().IntVar(&compressionLevel, "estimate-compression-quality", 0, "brotli quality used to size candidate patches")
	cmd.Flags().BoolVar(&skipOracle, "skip-oracle-check", false, "skip the from-scratch closure equivalence check")
	cmd.MarkFlagRequired("font")
	cmd.MarkFlagRequired("segments")

	return cmd
}
