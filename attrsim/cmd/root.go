// Package cmd provides the command-line interface for attrsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/attrsim/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "attrsim",
		Short: "attrsim simulates attributes that recharge over time.",
		Long: `attrsim simulates entity attributes, such as health or mana, ` +
			`that recharge periodically. Attributes are described in a YAML ` +
			`file and run on a discrete-event engine.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("env-file", ".env",
		"A file of environment variables to load if it exists.")

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newHistoryCmd())

	return root
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

// loadConfig reads the file given by the config flag and applies the
// environment on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "The attribute setup file.")
	_ = cmd.MarkFlagRequired("config")
}
