package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/scheduler"
	"github.com/lunnlew/m3u-filter/internal/service"
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled playlist regeneration",
	Long: `Daemon regenerates every enabled rule set on its sync interval and
writes the playlists to the output directory. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		outputDir := a.cfg.Storage.OutputPath()
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		run := func(ctx context.Context, ruleSetID models.ULID) error {
			result, err := a.generator.Generate(ctx, ruleSetID, service.GenerateOptions{})
			if err != nil {
				return err
			}
			path := filepath.Join(outputDir,
				fmt.Sprintf("%s.%s", result.RuleSetName, result.Format))
			return os.WriteFile(path, result.Content, 0o644)
		}

		sched := scheduler.NewScheduler(a.ruleSets, run, a.cfg.Scheduler.DefaultInterval).
			WithLogger(slog.Default())
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}

		slog.Info("daemon running", slog.String("output_dir", outputDir))
		<-ctx.Done()

		sched.Stop()
		slog.Info("daemon stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
