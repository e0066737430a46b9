package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mbarbosa/chatspace/cli/tui"
	"github.com/mbarbosa/chatspace/internal/configuration"
	"github.com/mbarbosa/chatspace/internal/debug"
	"github.com/mbarbosa/chatspace/internal/provider"
	"github.com/mbarbosa/chatspace/internal/session"
	"github.com/mbarbosa/chatspace/internal/store"
)

// NewChatCmd instantiates and returns the chat command, which runs the
// interactive interface.
func NewChatCmd(config *configuration.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat interface",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), config)
		},
	}
}

func runChat(ctx context.Context, config *configuration.Config) error {
	logger := debug.GetLogger()

	s, err := store.New(config.DatabasePath, logger)
	if err != nil {
		return errors.Wrap(err, "opening store")
	}
	defer s.Close()
	state := s.Load(config.DefaultModel)

	client := provider.NewOpenAIClient(config.APIKey, config.APIHost)
	binding := provider.NewBinding(client)
	notifier := tui.NewNotifier()
	manager := session.New(state, binding, notifier, logger, s.Save)

	model, err := tui.New(ctx, config, manager, notifier)
	if err != nil {
		return errors.Wrap(err, "initializing interface")
	}

	// Focus reporting drives the notification suppression while the
	// terminal window is focused.
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	model.SetProgram(program)

	_, err = program.Run()
	return errors.Wrap(err, "running interface")
}
