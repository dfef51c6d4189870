// decree-cli classifies candidate lists, generates decree archives offline
// and maintains the template registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decree-workers/internal/common/logger"
)

var logLevel string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "decree-cli",
		Short:         "Decree (SK) generation tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newClassifyCmd(), newGenerateCmd(), newTemplatesCmd())
	return root
}

func cliLogger() logger.Logger {
	return logger.NewStructured(logLevel, "console")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
