package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [file]",
		Short: "Send an event to a running ingest server",
		Long: "POST an analytics event (or a {\"batch\":[...]} envelope) to the ingest endpoint. " +
			"Reads the event JSON from the given file, or from stdin when no file is given.",
		Example: "  sailhook send event.json\n" +
			"  cat events.json | sailhook send --endpoint http://localhost:8080",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body []byte
			var err error
			if len(args) == 1 {
				body, err = os.ReadFile(args[0])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read event: %w", err)
			}
			if !gjson.ValidBytes(body) {
				return fmt.Errorf("event is not valid JSON")
			}

			url := strings.TrimRight(endpoint, "/") + "/v1/events"
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			client := &http.Client{Timeout: 30 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("send event: %w", err)
			}
			defer resp.Body.Close()
			responseBody, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server responded %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(responseBody)))
			return nil
		},
	}
	return cmd
}
