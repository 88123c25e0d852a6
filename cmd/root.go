package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rorical/QuickPane/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "quickpane",
	Short: "A popup chat assistant for your terminal",
	Long:  `QuickPane keeps a chat assistant resident and pops it up on a global hotkey.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: run the popup application
		application, err := app.NewApplication()
		if err != nil {
			log.Fatalf("Failed to create application: %v", err)
		}
		defer application.Stop()

		if err := application.Start(); err != nil {
			log.Fatalf("Application error: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
