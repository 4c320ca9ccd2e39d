package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List importable modules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cfg.NewRuntime()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("host %s", rt.Version)))
		for _, name := range rt.Modules() {
			fmt.Fprintln(out, "  "+name)
		}
		return nil
	},
}
