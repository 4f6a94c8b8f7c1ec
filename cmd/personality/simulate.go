package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/personality-engine/internal/simulation"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	replyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("10"))
	deadStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	lineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <script.yaml>",
	Short: "Play a scripted session against a fresh engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputJSON, _ := cmd.Flags().GetBool("json")

		script, err := simulation.LoadScript(args[0])
		if err != nil {
			return err
		}

		results, err := simulation.Run(context.Background(), script, cliLogger())
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}

		if outputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		name := script.Name
		if name == "" {
			name = args[0]
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("Simulation: %s", name)))
		fmt.Println(headerStyle.Render(fmt.Sprintf("%-4s %-8s %-8s %-36s %6s %6s %6s %6s %6s",
			"#", "time", "kind", "step", "hope", "happy", "trust", "affin", "guilt")))

		deathAt := firstDeath(results)
		var lastLines []string
		for _, r := range results {
			e := r.Snapshot.Emotion
			fmt.Printf("%-4d %-8s %-8s %-36s %6.3f %6.3f %6.3f %6.3f %6.3f\n",
				r.Index, r.At, r.Kind, truncate(r.Label, 36),
				e.Hope, e.Happiness, e.Trust, e.Affinity, r.Snapshot.Guilt)

			if r.Outcome != nil && r.Outcome.Reply != "" {
				fmt.Println("     " + replyStyle.Render(fmt.Sprintf("%q", r.Outcome.Reply)))
			}
			if r.Index == deathAt {
				fmt.Println("     " + deadStyle.Render("character died"))
			}
			// Only print the available lines when they change.
			if !slices.Equal(r.Lines, lastLines) {
				for _, l := range r.Lines {
					fmt.Println("     " + lineStyle.Render("> "+l))
				}
				lastLines = r.Lines
			}
		}
		return nil
	},
}

func firstDeath(results []simulation.StepResult) int {
	for _, r := range results {
		if !r.Snapshot.Alive {
			return r.Index
		}
	}
	return -1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
