package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagemeta/pagemeta/internal/analyzer"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze a page without generating metadata",
	Long: `Analyze page markup and print the extracted structure: title,
headings, links, keywords, detected language and content type. No
provider is contacted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("html-file", "f", "", `Read page markup from file ("-" for stdin)`)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	htmlFile, _ := cmd.Flags().GetString("html-file")

	pageURL := ""
	if len(args) > 0 {
		pageURL = strings.TrimSpace(args[0])
	}

	markup, err := pageMarkup(cmd.Context(), htmlFile, pageURL)
	if err != nil {
		return err
	}

	analysis := analyzer.Analyze(markup, pageURL)
	payload, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}
