package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fapiao-tools/invoice-recon/constants"
)

var (
	processPDFDir    string
	processTolerance float64
)

var processCmd = &cobra.Command{
	Use:   "process <input.xlsx> [output.xlsx]",
	Short: "Convert a summary workbook and verify it against PDFs",
	Long: `Reads the expense summary sheet, merges rows that share an invoice
number (summing the monetary columns), writes the reimbursement workbook,
and verifies the written values against the PDF invoices.

Without --pdf-dir the PDFs are looked up next to the input file: first in a
"pdfs" subdirectory, then in the input's own directory. An explicit
--pdf-dir is searched recursively.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cfg.InputPath = args[0]
		if len(args) == 2 {
			cfg.OutputPath = args[1]
		} else {
			cfg.OutputPath = filepath.Join(filepath.Dir(args[0]), constants.DefaultOutputFilename)
		}

		// An explicit PDF directory is searched recursively; auto-discovered
		// locations are flat.
		if cmd.Flags().Changed("pdf-dir") {
			cfg.PDFDir = processPDFDir
			cfg.Recursive = true
		}
		if cmd.Flags().Changed("tolerance") {
			cfg.Tolerance = processTolerance
		}

		p, closeHistory, err := newProcessor(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		report, err := p.Process(cmd.Context())
		if err != nil {
			return err
		}
		report.WriteSummary(os.Stdout)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processPDFDir, "pdf-dir", "", "directory holding the PDF invoices (searched recursively)")
	processCmd.Flags().Float64Var(&processTolerance, "tolerance", 0, "absolute tolerance for monetary comparisons")
	rootCmd.AddCommand(processCmd)
}
