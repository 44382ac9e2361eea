package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/attrsim/sim/timing"
)

func newValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an attribute setup file.",
		Long: "`validate -c attrs.yaml` builds every attribute of the file " +
			"and reports the first error.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			engine := timing.NewSerialEngine()
			freq := cfg.Simulation.Freq()

			for _, ac := range cfg.Attributes {
				if _, err := ac.Build(engine, freq); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d attributes OK\n",
				len(cfg.Attributes))

			return nil
		},
	}

	addConfigFlag(validateCmd)

	return validateCmd
}
