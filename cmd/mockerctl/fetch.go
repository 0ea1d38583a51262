package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	fetchMethod  string
	fetchData    string
	fetchHeaders []string
	fetchTimeout time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL",
	Short: "Send a request through the mock transport and print the response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMocker()
		if err != nil {
			return err
		}
		defer m.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
		defer cancel()

		var body io.Reader
		if fetchData != "" {
			body = strings.NewReader(fetchData)
		}
		req, err := http.NewRequestWithContext(ctx, strings.ToUpper(fetchMethod), args[0], body)
		if err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		for _, h := range fetchHeaders {
			k, v, ok := strings.Cut(h, ":")
			if !ok {
				return fmt.Errorf("invalid header %q, want Key: Value", h)
			}
			req.Header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
		}

		resp, err := m.Client().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), struct {
				Status  int         `json:"status"`
				Headers http.Header `json:"headers"`
				Body    string      `json:"body"`
			}{resp.StatusCode, resp.Header, string(data)})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", resp.Proto, resp.Status)
		if err := resp.Header.Write(out); err != nil {
			return err
		}
		fmt.Fprintln(out)
		_, err = out.Write(data)
		return err
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchMethod, "method", "X", http.MethodGet, "request method")
	fetchCmd.Flags().StringVarP(&fetchData, "data", "d", "", "request body")
	fetchCmd.Flags().StringArrayVarP(&fetchHeaders, "header", "H", nil, "request header, Key: Value")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "request timeout, covers rule delays")
	rootCmd.AddCommand(fetchCmd)
}
