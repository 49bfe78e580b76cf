package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yeager/tp-stats/internal/gateway"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the language teams registered on the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		baseURL, _ := cmd.Flags().GetString("base-url")

		hub := gateway.NewHubGateway(baseURL, logger)
		teams, err := hub.FetchTeams(cmd.Context())
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Code", "Language"})
		for _, team := range teams {
			tw.AppendRow(table.Row{team.Code, team.Name})
		}
		tw.Render()
		fmt.Fprintf(cmd.OutOrStdout(), "%d language teams\n", len(teams))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
