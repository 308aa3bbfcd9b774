package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyscout/internal/knowledge"
)

// openTopic ingests the document at path and returns the topic name. The
// --topic flag overrides the name derived from the file name.
func openTopic(ctx context.Context, cmd *cobra.Command, rt *runtime, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	name, _ := cmd.Flags().GetString("topic")
	if name == "" {
		name = knowledge.TopicFromFilename(path)
	}

	doc := knowledge.Document{Name: filepath.Base(path), Data: data}
	if _, err := rt.study.GetOrCreate(ctx, name, doc); err != nil {
		return "", err
	}
	return name, nil
}

func addTopicFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("topic", "t", "", "Topic name (default: file name without extension)")
}
