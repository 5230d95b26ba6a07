package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/service"
)

var (
	generateFormat       string
	generateSortTemplate string
	generateMaxPerChan   int
	generateNoDedupe     bool
	generateEpgURL       string
	generateOutput       string
	generateStdout       bool
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate <rule-set-name>",
	Short: "Generate a playlist for a rule set",
	Long: `Generate runs the filtering pipeline for the named rule set and writes
the resulting playlist to the output directory (or stdout with --stdout).

Identical configuration and catalog produce byte-identical output; the
content hash printed after a run can be compared across runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		ruleSet, err := a.ruleSets.GetByName(ctx, args[0])
		if err != nil {
			return fmt.Errorf("looking up rule set: %w", err)
		}
		if ruleSet == nil {
			return fmt.Errorf("rule set %q not found", args[0])
		}

		opts := service.GenerateOptions{
			Format:       core.OutputFormat(generateFormat),
			SortTemplate: generateSortTemplate,
			EpgURL:       generateEpgURL,
		}
		if cmd.Flags().Changed("max-per-channel") {
			opts.MaxPerChannel = &generateMaxPerChan
		}
		if generateNoDedupe {
			f := false
			opts.DedupeByURL = &f
		}

		result, err := a.generator.Generate(ctx, ruleSet.ID, opts)
		if err != nil {
			return err
		}

		if generateStdout {
			if _, err := os.Stdout.Write(result.Content); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		} else {
			path := generateOutput
			if path == "" {
				dir := a.cfg.Storage.OutputPath()
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
				path = filepath.Join(dir, fmt.Sprintf("%s.%s", ruleSet.Name, result.Format))
			}
			if err := os.WriteFile(path, result.Content, 0o644); err != nil {
				return fmt.Errorf("writing output file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		}

		fmt.Fprintf(os.Stderr, "tracks=%d bytes=%d sha256=%s duration=%s\n",
			result.TrackCount, result.ByteLength, result.ContentHash, result.Duration)
		for _, warning := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %v\n", warning)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "", "output format: m3u or txt (default from config)")
	generateCmd.Flags().StringVar(&generateSortTemplate, "sort-template", "", `sort template name ("none" to skip ordering, empty merges all)`)
	generateCmd.Flags().IntVar(&generateMaxPerChan, "max-per-channel", 0, "max tracks kept per channel within a group (0 = unlimited)")
	generateCmd.Flags().BoolVar(&generateNoDedupe, "no-dedupe", false, "skip URL deduplication")
	generateCmd.Flags().StringVar(&generateEpgURL, "epg-url", "", "x-tvg-url value for the M3U header")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output file path (default <output-dir>/<rule-set>.<format>)")
	generateCmd.Flags().BoolVar(&generateStdout, "stdout", false, "write the playlist to stdout")
	rootCmd.AddCommand(generateCmd)
}
