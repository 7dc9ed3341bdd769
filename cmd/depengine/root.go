package main

import (
	"github.com/spf13/cobra"

	"github.com/forgebase/depengine/internal/ports"
)

func newRootCmd(logger ports.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "depengine",
		Short:         "depengine runs declarative EVM deployment and operations jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCmd(logger))
	cmd.AddCommand(newVersionCmd())
	return cmd
}
