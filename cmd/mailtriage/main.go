package main

import (
	"os"

	"github.com/spf13/cobra"

	pkgconfig "mailtriage/pkg/config"
)

var (
	configEnv string
	configDir string
)

func main() {
	root := &cobra.Command{
		Use:          "mailtriage",
		Short:        "Classify support emails and act on them",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configEnv, "env", pkgconfig.GetConfigEnv(), "config environment (loads <env>.yaml over base.yaml)")
	root.PersistentFlags().StringVar(&configDir, "config-dir", pkgconfig.GetEnv("CONFIG_DIR", "config"), "directory holding base.yaml, <env>.yaml and secrets.env")

	root.AddCommand(runCmd())
	root.AddCommand(workerCmd())
	root.AddCommand(promptsCmd())
	root.AddCommand(outcomeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
