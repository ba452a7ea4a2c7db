// cmd/futureself/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	ConfigFile string
}

func main() {
	opt := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "futureself",
		Short:        "Conversations with your future self",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opt.ConfigFile, "config", "", "Path to config.yaml (default: search ., ./config, $HOME/.futureself)")

	cmd.AddCommand(
		newServeCommand(opt),
		newTelegramCommand(opt),
		newMigrateCommand(opt),
		newPromptCommand(opt),
	)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
