package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pagemeta/pagemeta/internal/output"
	"github.com/pagemeta/pagemeta/internal/server"
)

var rateLimitListFormat string

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rate limiter bucket state",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(rateLimitListFormat)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		var listing server.RateLimitsResponse
		if err := adminRequest(cmd, http.MethodGet, "/v1/rate-limits", &listing); err != nil {
			return err
		}

		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(listing, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		}

		if !listing.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "Rate limiting is disabled")
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatRateLimits(listing.Buckets))
		return nil
	},
}

func init() {
	rateLimitListCmd.Flags().StringVar(&rateLimitListFormat, "output-format", string(output.FormatTable), "Output format: table|json")
}
