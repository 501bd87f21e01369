package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duragraph/workflow-go/internal/graph"
)

func newCompileCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a graph JSON file and report its topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			g, err := graph.FromJSON(raw)
			if err != nil {
				return err
			}
			fmt.Printf("compiled ok: %d nodes, %d edges\n", len(g.Nodes()), len(g.Edges()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a graph JSON file")
	cmd.MarkFlagRequired("file")
	return cmd
}
