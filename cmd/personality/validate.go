package main

import (
	"fmt"

	"github.com/jwebster45206/personality-engine/pkg/personality"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <weights.(json|yaml)>",
	Short: "Check a network weight file and optionally a routing table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		routingPath, _ := cmd.Flags().GetString("routing")

		fmt.Printf("Validating %s...\n", args[0])
		nc, err := personality.LoadNetworkConfig(args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := nc.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Printf("Network is valid: %d inputs, %d hidden, %d outputs\n", nc.InputSize, nc.HiddenSize, nc.OutputSize)

		if routingPath != "" {
			fmt.Printf("Validating %s...\n", routingPath)
			routing, err := personality.LoadRouting(routingPath)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			routed := 0
			for _, row := range routing {
				if !row.IsZero() {
					routed++
				}
			}
			fmt.Printf("Routing is valid: %d of %d tags routed\n", routed, personality.TagCount)
		}
		return nil
	},
}
