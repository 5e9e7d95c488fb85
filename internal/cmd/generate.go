package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagemeta/pagemeta/internal/core"
	"github.com/pagemeta/pagemeta/internal/output"
)

// maxFetchBody caps how much of a fetched page is read.
const maxFetchBody = 4 << 20

var generateCmd = &cobra.Command{
	Use:   "generate [url]",
	Short: "Generate SEO metadata for a page",
	Long: `Generate SEO metadata for a page.

The page markup comes from --html-file (use "-" for stdin) or is fetched
from the given URL. With --offline no provider is called and metadata is
derived heuristically from the page analysis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("html-file", "f", "", `Read page markup from file ("-" for stdin)`)
	generateCmd.Flags().String("provider", "", "Provider instance to use (default from config)")
	generateCmd.Flags().String("prompt", "", "Prompt slug to use (default \"metadata\")")
	generateCmd.Flags().String("output-format", string(output.FormatTable), "Output format: table|json|html")
	generateCmd.Flags().Bool("no-cache", false, "Bypass the metadata cache")
	generateCmd.Flags().Bool("offline", false, "Skip the provider and use heuristic metadata only")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	htmlFile, _ := cmd.Flags().GetString("html-file")
	providerName, _ := cmd.Flags().GetString("provider")
	promptSlug, _ := cmd.Flags().GetString("prompt")
	outputFormat, _ := cmd.Flags().GetString("output-format")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	offline, _ := cmd.Flags().GetBool("offline")

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	pageURL := ""
	if len(args) > 0 {
		pageURL = strings.TrimSpace(args[0])
	}

	markup, err := pageMarkup(cmd.Context(), htmlFile, pageURL)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	comps, err := buildComponents(cmd.Context(), cfg, cliLogger(), offline)
	if err != nil {
		return err
	}
	defer comps.Close() // nolint:errcheck // best-effort cleanup

	result, err := comps.Engine.Generate(cmd.Context(), core.GenerateRequest{
		URL:       pageURL,
		HTML:      markup,
		Provider:  providerName,
		Prompt:    promptSlug,
		SkipCache: noCache,
	})
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatResult(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return nil
}

// pageMarkup resolves the page markup: an explicit file wins, otherwise
// the URL is fetched.
func pageMarkup(ctx context.Context, htmlFile, pageURL string) (string, error) {
	if htmlFile != "" {
		if htmlFile == "-" {
			data, err := io.ReadAll(io.LimitReader(os.Stdin, maxFetchBody))
			if err != nil {
				return "", fmt.Errorf("reading stdin: %w", err)
			}
			return string(data), nil
		}
		data, err := os.ReadFile(htmlFile)
		if err != nil {
			return "", fmt.Errorf("reading html file: %w", err)
		}
		return string(data), nil
	}

	if pageURL == "" {
		return "", errors.New("a url argument or --html-file is required")
	}
	return fetchPage(ctx, pageURL)
}

func fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", "pagemeta/"+versionInfo.Version)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching page: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return "", fmt.Errorf("reading page body: %w", err)
	}
	return string(data), nil
}
