package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/hospital-sim/hospital-sim/sim"
)

// defaultsCmd prints the reference hospital in the config file format, as a
// starting point for --config files.
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeDefaults(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func writeDefaults(w io.Writer) error {
	data, err := sim.DefaultConfig().YAML()
	if err != nil {
		return fmt.Errorf("marshaling defaults: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
}
