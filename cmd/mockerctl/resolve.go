package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	model "go_mock_interceptor/internal/domain/model/mock_rule"

	"github.com/spf13/cobra"
)

var resolveMethod string

var resolveCmd = &cobra.Command{
	Use:   "resolve URL",
	Short: "Show which rule answers a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMocker()
		if err != nil {
			return err
		}
		defer m.Close()

		req, err := http.NewRequest(strings.ToUpper(resolveMethod), args[0], nil)
		if err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		info := model.NewHTTPRequest(req)

		type resolveResult struct {
			Handled bool   `json:"handled"`
			RuleID  string `json:"ruleId,omitempty"`
			Rule    string `json:"rule,omitempty"`
			Status  int    `json:"status,omitempty"`
		}
		result := resolveResult{Handled: m.Registry.ShouldHandle(info)}
		if result.Handled {
			if rule := m.Registry.Resolve(info); rule != nil {
				result.RuleID = rule.ID()
				result.Rule = rule.String()
				result.Status = rule.StatusCode()
			}
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
		} else {
			switch {
			case !result.Handled:
				fmt.Fprintln(cmd.OutOrStdout(), "not intercepted")
			case result.Rule == "":
				fmt.Fprintln(cmd.OutOrStdout(), "intercepted, but no rule matches (missing mock)")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), result.Rule)
			}
		}
		if result.Handled && result.Rule == "" {
			return errors.New("missing mock")
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveMethod, "method", "X", http.MethodGet, "request method")
	rootCmd.AddCommand(resolveCmd)
}
