// Command wxtext decodes AWIPS text products: bulletins, VTEC strings and UGC
// lines.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "wxtext",
		Short:        "Decode AWIPS text products",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			logrus.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "warn", "logging level (error, warn, info, debug, trace)")

	root.AddCommand(newParseCmd(), newVtecCmd(), newUgcCmd())
	return root
}
