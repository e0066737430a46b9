package cli

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mbarbosa/chatspace/internal/configuration"
	"github.com/mbarbosa/chatspace/internal/conversation"
	"github.com/mbarbosa/chatspace/internal/store"
)

// NewWorkspaceCmd instantiates and returns the workspace command tree.
func NewWorkspaceCmd(config *configuration.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
		Long:  "List, create, rename and delete workspaces without entering the chat interface",
	}
	cmd.AddCommand(newWorkspaceListCmd(config))
	cmd.AddCommand(newWorkspaceCreateCmd(config))
	cmd.AddCommand(newWorkspaceRenameCmd(config))
	cmd.AddCommand(newWorkspaceDeleteCmd(config))
	return cmd
}

// openState opens the store and loads the persisted state. Admin commands run
// outside the TUI, so store warnings go to a discarded logger.
func openState(config *configuration.Config) (*store.Store, conversation.State, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.New(config.DatabasePath, logger)
	if err != nil {
		return nil, conversation.State{}, errors.Wrap(err, "opening store")
	}
	return s, s.Load(config.DefaultModel), nil
}

func newWorkspaceListCmd(config *configuration.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workspaces",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			s, state, err := openState(config)
			cobra.CheckErr(err)
			defer s.Close()

			Title("CHATSPACE WORKSPACES")
			for _, workspace := range state.Workspaces {
				if workspace.ID == state.ActiveWorkspaceID {
					ActiveMarker("* ")
				} else {
					Detail("  ")
				}
				Item("%s (%s)", workspace.Name, workspace.ID)
				Detail(" - %d chats\n", len(workspace.Chats))
			}
		},
	}
}

func newWorkspaceCreateCmd(config *configuration.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace and make it active",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s, state, err := openState(config)
			cobra.CheckErr(err)
			defer s.Close()

			next, workspaceID := state.CreateWorkspace(args[0])
			cobra.CheckErr(s.Save(next))
			Success("Created workspace %s (%s)\n", args[0], workspaceID)
		},
	}
}

func newWorkspaceRenameCmd(config *configuration.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a workspace",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			s, state, err := openState(config)
			cobra.CheckErr(err)
			defer s.Close()

			if _, ok := state.FindWorkspace(args[0]); !ok {
				cobra.CheckErr(errors.Errorf("no workspace with id %s", args[0]))
			}
			cobra.CheckErr(s.Save(state.RenameWorkspace(args[0], args[1])))
			Success("Renamed workspace %s to %s\n", args[0], args[1])
		},
	}
}

func newWorkspaceDeleteCmd(config *configuration.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workspace and all its chats",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s, state, err := openState(config)
			cobra.CheckErr(err)
			defer s.Close()

			workspace, ok := state.FindWorkspace(args[0])
			if !ok {
				cobra.CheckErr(errors.Errorf("no workspace with id %s", args[0]))
			}
			if !QueryUser("Delete workspace \"" + workspace.Name + "\" and all its chats?") {
				return
			}
			next, err := state.DeleteWorkspace(args[0])
			cobra.CheckErr(err)
			cobra.CheckErr(s.Save(next))
			Success("Deleted workspace %s\n", workspace.Name)
		},
	}
}
