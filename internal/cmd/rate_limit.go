package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagemeta/pagemeta/internal/server"
)

var rateLimitServerURL string

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect and reset the server's rate limiter",
	Long: `Inspect and reset the rate limiter of a running pagemeta server.

Limiter state lives in the server process, so these commands talk to its
admin endpoints rather than to local state.`,
}

func init() {
	rateLimitCmd.PersistentFlags().StringVar(&rateLimitServerURL, "server", "http://localhost:8080", "base URL of the running server")
	rateLimitCmd.AddCommand(rateLimitListCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}

func adminClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func adminURL(path string) string {
	return strings.TrimRight(rateLimitServerURL, "/") + path
}

// adminRequest performs one request against the server's admin API and
// decodes the JSON response into dst.
func adminRequest(cmd *cobra.Command, method, path string, dst any) error {
	req, err := http.NewRequestWithContext(cmd.Context(), method, adminURL(path), nil)
	if err != nil {
		return err
	}

	resp, err := adminClient().Do(req)
	if err != nil {
		return fmt.Errorf("contacting server at %s: %w", rateLimitServerURL, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var envelope server.ErrorResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			return fmt.Errorf("server error: %s", envelope.Error.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if dst == nil {
		return nil
	}
	return json.Unmarshal(body, dst)
}
