package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the Lens client.
// It registers the debugger query command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "lens",
		Short: "Lens client commands",
	}
	root.AddCommand(NewDebuggerCommand(baseURL))
	return root
}
