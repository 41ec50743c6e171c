package cmd

import (
	"djradar/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the DJ Radar HTTP server",
	Long:  `Start the HTTP server that serves the DJ tracking, set discovery and library APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
