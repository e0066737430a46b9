package main

import (
	"github.com/spf13/cobra"

	"github.com/mbarbosa/chatspace/cli"
	"github.com/mbarbosa/chatspace/internal/configuration"
)

const configFilepath = "~/.config/chatspace/config.json"

var rootCmd = &cobra.Command{
	Use:   "chatspace",
	Short: "A workspace-organized chat client for AI models",
}

func main() {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	chatCmd := cli.NewChatCmd(config)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(cli.NewWorkspaceCmd(config))

	// Running with no subcommand opens the chat interface.
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Args = cobra.ExactArgs(0)

	rootCmd.Execute()
}
