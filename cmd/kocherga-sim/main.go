package main

import (
	"os"

	"github.com/spf13/cobra"
)

// cmdGlobal holds the persistent flags every subcommand shares, mirroring
// the teacher's flat global-flags-struct-plus-cobra.Command convention.
type cmdGlobal struct {
	flagLogLevel string
}

func main() {
	global := &cmdGlobal{}

	root := &cobra.Command{
		Use:               "kocherga-sim",
		Short:             "Host-side harness for the kocherga bootloader core",
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	root.PersistentFlags().StringVarP(&global.flagLogLevel, "log-level", "l", "info",
		"Log level: debug, info, warn, error")

	serveCmd := &cmdServe{}
	updateCmd := &cmdUpdate{}
	root.AddCommand(serveCmd.command())
	root.AddCommand(updateCmd.command())
	root.AddCommand((&cmdHexdump{}).command())
	root.AddCommand((&cmdInspect{}).command())

	cobra.OnInitialize(func() {
		serveCmd.logLevel = global.flagLogLevel
		updateCmd.logLevel = global.flagLogLevel
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
