package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	rateLimitResetAll      bool
	rateLimitResetProvider string
)

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset rate limiter buckets to full capacity",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.TrimSpace(rateLimitResetProvider)

		switch {
		case rateLimitResetAll && provider != "":
			return errors.New("--all and --provider are mutually exclusive")
		case rateLimitResetAll:
			if err := adminRequest(cmd, http.MethodPost, "/v1/rate-limits/reset", nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reset all rate limit buckets")
			return nil
		case provider != "":
			path := "/v1/rate-limits/" + url.PathEscape(provider) + "/reset"
			if err := adminRequest(cmd, http.MethodPost, path, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset rate limit bucket for %q\n", provider)
			return nil
		default:
			return errors.New("--provider or --all is required")
		}
	},
}

func init() {
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetAll, "all", false, "Reset every bucket")
	rateLimitResetCmd.Flags().StringVar(&rateLimitResetProvider, "provider", "", "Reset a single provider's bucket")
}
