package cmd

import (
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/QuickPane/internal/config"
	"github.com/Rorical/QuickPane/internal/history"
)

var modelCmd = &cobra.Command{
	Use:   "model [model-name]",
	Short: "Set the model for the active profile",
	Long:  `Set the chat model used by the active profile, picking interactively when no name is given.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var model string
		if len(args) > 0 {
			model = args[0]
		} else {
			prompt := promptui.Select{
				Label: "Select model",
				Items: []string{"gpt-4o-mini", "gpt-5", "o4-mini"},
			}
			_, model, err = prompt.Run()
			if err != nil {
				log.Fatalf("Selection failed: %v", err)
			}
		}

		cfg.SetModel(model)
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Model set to '%s'\n", model)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved conversation history",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := history.NewStore()
		if err != nil {
			log.Fatalf("Failed to open history store: %v", err)
		}
		if err := store.Clear(); err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Println("History cleared.")
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(clearCmd)
}
