package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/curator/internal/app"
	"github.com/MrSnakeDoc/curator/internal/config"
	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/logger"
)

var (
	userID     string
	persona    string
	components *app.Components
	log        logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "curator-cli",
	Short: "Run the curation pipeline from the command line",
	Long: `curator-cli runs the same curation pipeline as the curator server
against the configured store, synchronously and for a single
(user, persona) scope.

Configuration is read from the same CURATOR_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		cfg := config.Load()
		log = logger.New(cfg.LogLevel, cfg.PrettyLog)

		c, err := app.Wire(cmd.Context(), cfg, log, false)
		if err != nil {
			return err
		}
		components = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if components != nil {
			components.Close(log)
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", os.Getenv("CURATOR_USER"), "user id owning the resources")
	rootCmd.PersistentFlags().StringVarP(&persona, "persona", "p", os.Getenv("CURATOR_PERSONA"), "persona owning the resources")
}

// scope returns the (user, persona) pair from the flags.
func scope() (domain.Scope, error) {
	s := domain.Scope{UserID: strings.TrimSpace(userID), Persona: strings.TrimSpace(persona)}
	if s.IsZero() {
		return s, errors.New("--user and --persona are required")
	}
	return s, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
