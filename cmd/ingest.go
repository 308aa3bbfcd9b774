package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Load a PDF into the vector store",
	Long: "Extracts, chunks and embeds a document into its topic table. With a persistent " +
		"vector backend (pgvector, weaviate) the table outlives the process.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		name, err := openTopic(ctx, cmd, rt, args[0])
		if err != nil {
			return err
		}
		ts, err := rt.study.Lookup(name)
		if err != nil {
			return err
		}

		fmt.Printf("Topic:   %s\n", name)
		fmt.Printf("Table:   %s\n", ts.Table)
		fmt.Printf("Pages:   %d\n", ts.Knowledge.Pages)
		fmt.Printf("Chunks:  %d\n", ts.Knowledge.Chunks)
		return nil
	},
}

func init() {
	addTopicFlag(ingestCmd)
}
