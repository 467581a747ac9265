package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fapiao-tools/invoice-recon/internal/common"
)

var (
	configPath string
	verbose    bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoice-recon",
	Short: "Expense invoice deduplication and PDF cross-checking",
	Long: `invoice-recon converts a fixed-layout expense summary workbook into a
reimbursement workbook, merging rows that share an invoice number, then
cross-checks the written values against the original PDF invoices.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the CLI and reports the exit code to the caller.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
		}
		logger.Error("cli.run.failed", "error", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig layers the optional config file over the defaults. A --config
// path must exist; the default location is tried silently.
func loadConfig() (common.Config, error) {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = "invoice-recon.yaml"
	}
	cfg, err := common.LoadConfig(path, explicit)
	if err != nil {
		return cfg, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
