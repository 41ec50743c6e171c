package cmd

import (
	"fmt"
	"log"
	"os"

	"djradar/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "djradar",
	Short: "DJ Radar tracks DJs and discovers their live sets on YouTube.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting DJ Radar server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
