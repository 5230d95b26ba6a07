package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lunnlew/m3u-filter/internal/models"
)

var (
	importSourceName string
	importSourceType string
)

// importCmd represents the import command group.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import playlists and template definitions",
}

// importPlaylistCmd imports a playlist file into a stream source.
var importPlaylistCmd = &cobra.Command{
	Use:   "playlist <file>",
	Short: "Import a playlist file into a stream source",
	Long: `Import reads an M3U, M3U8 or TXT playlist file and replaces the tracks
of the named stream source with its entries. The source is created when it
does not exist yet. Compressed files (gzip, bzip2, xz) are detected
automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		name := importSourceName
		if name == "" {
			return fmt.Errorf("--source is required")
		}

		source, err := a.sources.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("looking up source: %w", err)
		}
		if source == nil {
			source = &models.StreamSource{
				Name:     name,
				URL:      fmt.Sprintf("file://%s", args[0]),
				Type:     models.StreamSourceType(importSourceType),
				IsActive: true,
			}
			if err := a.sources.Create(ctx, source); err != nil {
				return fmt.Errorf("creating source: %w", err)
			}
		}

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening playlist file: %w", err)
		}
		defer file.Close()

		result, err := a.importer.ImportPlaylist(ctx, source, file)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "imported %d tracks into %q (%d lines skipped)\n",
			result.TracksImported, source.Name, result.LinesSkipped)
		return nil
	},
}

// importTemplatesCmd imports sort and mapping template definitions.
var importTemplatesCmd = &cobra.Command{
	Use:   "templates <file>",
	Short: "Import sort and group mapping templates from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening template file: %w", err)
		}
		defer file.Close()

		created, err := a.importer.ImportTemplates(ctx, file)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "imported %d templates\n", created)
		return nil
	},
}

func init() {
	importPlaylistCmd.Flags().StringVarP(&importSourceName, "source", "s", "", "stream source name (required)")
	importPlaylistCmd.Flags().StringVarP(&importSourceType, "type", "t", "m3u", "source type for new sources: m3u, m3u8, txt")
	importCmd.AddCommand(importPlaylistCmd)
	importCmd.AddCommand(importTemplatesCmd)
	rootCmd.AddCommand(importCmd)
}
