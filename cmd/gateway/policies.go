package main

import (
	"errors"
	"fmt"

	"endpoint-gateway/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPoliciesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "Validate the policies file and print the configured routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("policies_file")
			if path == "" {
				return errors.New("no policies file configured (--policies or GATEWAY_POLICIES_FILE)")
			}

			routes, err := config.LoadPolicies(path)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Path", "Strategy", "Algorithm", "Window", "Max Requests"})
			for _, r := range routes {
				t.AppendRow(table.Row{r.Path, r.Policy.Strategy, r.Policy.Algorithm, r.Policy.Window, r.Policy.MaxRequests})
			}
			t.AppendFooter(table.Row{"", "", "", "routes", fmt.Sprintf("%d", len(routes))})
			t.Render()
			return nil
		},
	}
}
