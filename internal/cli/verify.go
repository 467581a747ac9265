package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verifyPDFDir    string
	verifyTolerance float64
)

var verifyCmd = &cobra.Command{
	Use:   "verify <converted.xlsx>",
	Short: "Re-check an already converted workbook against PDFs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.InputPath = args[0]
		if cmd.Flags().Changed("pdf-dir") {
			cfg.PDFDir = verifyPDFDir
			cfg.Recursive = true
		}
		if cmd.Flags().Changed("tolerance") {
			cfg.Tolerance = verifyTolerance
		}

		p, closeHistory, err := newProcessor(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		report, err := p.VerifyOnly(cmd.Context())
		if err != nil {
			return err
		}
		report.WriteSummary(os.Stdout)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyPDFDir, "pdf-dir", "", "directory holding the PDF invoices (searched recursively)")
	verifyCmd.Flags().Float64Var(&verifyTolerance, "tolerance", 0, "absolute tolerance for monetary comparisons")
	rootCmd.AddCommand(verifyCmd)
}
