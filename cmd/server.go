/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/shoplite/apiserver/config"
	"github.com/shoplite/apiserver/internal/logging"
	"github.com/shoplite/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the shoplite API server",
	Long: `Starts the shoplite API server. Usage:

	shoplite server
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		if err := logging.Init(cfg.Env); err != nil {
			fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
			os.Exit(1)
		}
		defer logging.Sync()

		srv, err := server.New(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
