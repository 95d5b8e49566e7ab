// Package cmd is the cvbot command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"CVForgeBot/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cvbot",
	Short: "Telegram bot that turns a guided form into a PDF resume",
	Long: `cvbot asks a user for their resume data one question at a time over
Telegram, shows a preview and renders the confirmed answers to a PDF with LaTeX.`,
	SilenceUsage: true,
}

func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "config file")
}

// loadConfig loads the config file named by --config. The default path may
// be absent, an explicitly given one may not.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configPath, cmd.Flags().Changed("config"))
}
