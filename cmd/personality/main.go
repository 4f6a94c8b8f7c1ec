package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "personality",
	Short: "Tools for the companion personality engine",
	Long:  `Run scripted sessions offline, check weight and routing files, and enqueue requests for a running worker.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine internals at debug level")

	rootCmd.AddCommand(simulateCmd, validateCmd, enqueueCmd)

	simulateCmd.Flags().Bool("json", false, "Print results as JSON")

	validateCmd.Flags().String("routing", "", "Also validate a routing table")

	enqueueCmd.Flags().String("redis-url", "redis://localhost:6379", "Redis URL")
	enqueueCmd.Flags().String("character", "00000000-0000-0000-0000-000000000001", "Character ID")
	enqueueCmd.Flags().String("tag", "", "Raise a personality event with this tag")
	enqueueCmd.Flags().Float64("impact", 0, "Event impact (0 uses the default)")
	enqueueCmd.Flags().Float64("tone", 0, "Player tone in [-1,1]")
	enqueueCmd.Flags().String("health", "", "Apply a health event of this kind")
	enqueueCmd.Flags().Float64("amount", 0, "Health event amount")
}

func cliLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
