package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyscout/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List submitted quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topic, _ := cmd.Flags().GetString("topic")

		s, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryQuizEvents(cmd.Context(), store.QueryOpts{Limit: limit, Topic: topic})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No quizzes submitted yet.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-24s  %-24s  %7s  %5s\n",
			"ID", "Timestamp", "Topic", "Subject", "Score", "Acc")
		fmt.Println(strings.Repeat("─", 94))
		for _, e := range events {
			acc := 0.0
			if e.Total > 0 {
				acc = float64(e.Score) / float64(e.Total) * 100
			}
			fmt.Printf("%-5d  %-19s  %-24s  %-24s  %3d/%-3d  %4.0f%%\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Topic, 24),
				truncate(e.Subject, 24),
				e.Score, e.Total, acc,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of quizzes to show")
	historyCmd.Flags().StringP("topic", "t", "", "Only show quizzes for this topic")
}
