package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duragraph/workflow-go/cmd/duragraphctl/config"
	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/graph"
	"github.com/duragraph/workflow-go/internal/workflow"
)

func newRunCmd() *cobra.Command {
	var graphFile, inputFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a compiled graph once against an optional input payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(graphFile)
			if err != nil {
				return fmt.Errorf("reading %s: %w", graphFile, err)
			}
			g, err := graph.FromJSON(raw)
			if err != nil {
				return err
			}

			var initial *flowdata.FlowData
			if inputFile != "" {
				inputRaw, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("reading %s: %w", inputFile, err)
				}
				var d flowdata.FlowData
				if err := json.Unmarshal(inputRaw, &d); err != nil {
					return fmt.Errorf("parsing %s: %w", inputFile, err)
				}
				initial = &d
			}

			deps := buildDependencies(config.Load())
			wf, err := workflow.New(g, workflow.WithDependencies(deps))
			if err != nil {
				return err
			}

			out, err := wf.Start(context.Background(), initial)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
	cmd.Flags().StringVarP(&graphFile, "file", "f", "", "path to a graph JSON file")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to a FlowData JSON payload seeded to the start node")
	cmd.MarkFlagRequired("file")
	return cmd
}
