// Package cmd contains the ledger client commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	url     string
	timeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 5*time.Minute, "How long to wait for the node, mining can take a while.")
}

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Client for the proof of work ledger node",
}

// Execute runs the command that was selected on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// call performs the request against the node and decodes the response into
// the provided value.
func call(method string, path string, body io.Reader, v any) error {
	req, err := http.NewRequest(method, url+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil

	case resp.StatusCode >= http.StatusBadRequest:
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("node returned status %d", resp.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("%s: %v", er.Error, er.Fields)
		}
		return fmt.Errorf("%s", er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// printJSON writes the value as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
