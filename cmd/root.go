package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-gate",
	Short: "Face gated worker attendance service",
	Long:  "Attendance gate verifies worker face descriptors, keeps the attendance ledger and notifies subscribed Telegram chats about movements.",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// optional .env file for local development
	_ = godotenv.Load()
}
