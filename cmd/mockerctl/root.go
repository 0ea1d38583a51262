package main

import (
	"encoding/json"
	"fmt"
	"io"

	app "go_mock_interceptor/app/http_mock_app"

	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "mockerctl",
	Short:         "Validate, resolve and fetch against mock rule fixtures",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "fixture config file (default $MOCKER_CONFIG_PATH or mocker.<env>.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

func loadMocker() (*app.Mocker, error) {
	m, err := app.NewMockerFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", configPath, err)
	}
	return m, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
