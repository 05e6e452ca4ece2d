package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pim/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "pim",
	Short: "PIM - payslip intelligence toolkit",
	Long: `PIM processes payslips (holerites, bulletins de paie): OCR text
extraction, payroll field extraction and validation, salary optimization
recommendations and dashboard export.

Subcommands cover the full flow: "scan" runs OCR only, "payslip" runs the
complete extraction pipeline, "export" pushes processed records to the
dashboard spreadsheet.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("PIM - payslip intelligence toolkit")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
