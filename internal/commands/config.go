package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvrdash/nvrdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE:  runInitConfig,
}

func init() {
	initConfigCmd.Flags().StringP("output", "o", "config.yaml", "output file")
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(configCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(out); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", out)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", out)
	return nil
}
