// Package main is the command-line client for the recruitment workflow.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"alfredoptarigan/recruiter/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "recruitctl",
	Short: "Run and inspect recruitment workflows",
	Long:  "recruitctl runs the screening workflow for a resume and inspects runs, checkpoints and queued jobs stored in the database.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
