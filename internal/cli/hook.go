package cli

import (
	"fmt"

	"github.com/Rokon-556/recipe-gen/pkg/hooks"
	"github.com/spf13/cobra"
)

// NewHookCmd creates the hook command with subcommands.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Work with export hook scripts",
		Long: `Hooks are Tengo scripts run before and after batch exports. They are
loaded from hooks/<type>.tengo next to the config file, or from the paths
set in hooks.pre_export and hooks.post_export.`,
	}

	cmd.AddCommand(newHookTemplateCmd())

	return cmd
}

func newHookTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "template TYPE",
		Short:     "Print a starter script for a hook type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(hooks.PreExport), string(hooks.PostExport)},
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if !hooks.IsValidHookType(hookType) {
				return hooks.ErrUnsupportedHookType(hookType)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hooks.HookTemplate(hookType))
			return nil
		},
	}

	return cmd
}
