package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the fixture config and report how many rules it registers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMocker()
		if err != nil {
			return err
		}
		defer m.Close()

		type validateResult struct {
			Mode    string `json:"mode"`
			Rules   int    `json:"rules"`
			Ignores int    `json:"ignores"`
		}
		result := validateResult{
			Mode:    m.Registry.Mode().String(),
			Rules:   len(m.Registry.Rules()),
			Ignores: len(m.Registry.IgnoreRules()),
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d rules, %d ignore rules, mode %s\n", result.Rules, result.Ignores, result.Mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
