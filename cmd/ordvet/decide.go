package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/ordvet/internal/decision"
	"github.com/dgallion1/ordvet/internal/llm"
	"github.com/dgallion1/ordvet/internal/queue"
)

func decideCmd() *cobra.Command {
	var (
		system string
		start  string
		attrs  []string
	)

	cmd := &cobra.Command{
		Use:   "decide <graph.yaml>",
		Short: "Run a decision-graph conversation and print the final output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := apiKey()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			log := newLogger()
			registry := queue.NewRegistry()
			client := llm.NewClient(key, flagModel, registry.GetOrCreate(llm.ServiceName, 1), log)
			chat := llm.NewChatSession(client, system)

			graph, err := decision.LoadGraph(f, chat)
			if err != nil {
				return err
			}
			// --attr values override the graph's own attrs.
			for _, kv := range attrs {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("bad --attr %q, want key=value", kv)
				}
				graph.Attrs[k] = v
			}

			out, err := graph.Run(cmd.Context(), start)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "You are a helpful assistant.", "system message for the conversation")
	cmd.Flags().StringVar(&start, "start", decision.StartNode, "node to begin traversal at")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "prompt substitution value as key=value (repeatable)")
	return cmd
}
