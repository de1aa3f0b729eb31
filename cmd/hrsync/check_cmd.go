package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify HR API credentials and every configured destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := root.load()
			if err != nil {
				return err
			}
			defer conf.Unload()

			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := a.employees.Authenticate(cmd.Context()); err != nil {
				return classify(err)
			}
			fmt.Fprintln(out, "HR API: authenticated")
			if err := a.dispatcher.Check(cmd.Context()); err != nil {
				return classify(err)
			}
			fmt.Fprintf(out, "destinations: %v reachable\n", a.dispatcher.Names())
			return nil
		},
	}
}
