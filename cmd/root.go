package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cubescout",
	Short: "A face-recognition kiosk that announces arrivals",
	Long: `Cubescout watches a camera, recognizes people from a training manifest
and shows a desktop notification when someone has been in view long enough.
Repeat notifications for the same person are suppressed for a cooldown period.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
