package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyscout/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <file>",
	Short: "Generate a multiple-choice quiz from a document",
	Long: "Generates a quiz and prints it. With --answers the quiz is submitted " +
		"(e.g. --answers a,c,,b leaves question 3 unanswered) and the score and review are printed.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		count, _ := cmd.Flags().GetInt("count")
		if count == 0 {
			count = rt.cfg.Quiz.DefaultCount
		}
		subject, _ := cmd.Flags().GetString("subject")
		reveal, _ := cmd.Flags().GetBool("reveal")
		answers, _ := cmd.Flags().GetString("answers")

		name, err := openTopic(ctx, cmd, rt, args[0])
		if err != nil {
			return err
		}

		st, err := rt.study.GenerateQuiz(ctx, name, subject, count)
		if err != nil {
			return err
		}

		if answers == "" {
			printQuestions(st.Questions, reveal)
			return nil
		}

		choices, err := parseAnswers(answers, len(st.Questions))
		if err != nil {
			return err
		}
		for i, c := range choices {
			if c < 0 {
				continue
			}
			if err := rt.study.SetAnswer(name, i, c); err != nil {
				return err
			}
		}
		res, err := rt.study.SubmitQuiz(ctx, name)
		if err != nil {
			return err
		}
		printReview(res)
		return nil
	},
}

func printQuestions(questions []quiz.Question, reveal bool) {
	for i, q := range questions {
		fmt.Printf("%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			mark := " "
			if reveal && j == q.Correct {
				mark = "*"
			}
			fmt.Printf("  %s %c) %s\n", mark, 'a'+j, opt)
		}
		fmt.Println()
	}
}

func printReview(res quiz.Result) {
	fmt.Printf("Score: %d/%d (%.0f%%)\n", res.Score, res.Total, res.Accuracy()*100)
	fmt.Println(strings.Repeat("─", 60))
	for _, item := range res.Review {
		status := "✗"
		if item.IsCorrect {
			status = "✓"
		}
		chosen := "-"
		if item.Chosen != nil {
			chosen = string(rune('a' + *item.Chosen))
		}
		fmt.Printf("%s %d. %s\n", status, item.Index+1, item.Question)
		fmt.Printf("    your answer: %s  correct: %c) %s\n", chosen, 'a'+item.Correct, item.Options[item.Correct])
	}
}

// parseAnswers turns "a,c,,b" into option indexes; -1 marks a skipped
// question.
func parseAnswers(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) > n {
		return nil, fmt.Errorf("got %d answers for %d questions", len(parts), n)
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "":
			out[i] = -1
		case len(p) == 1 && p[0] >= 'a' && p[0] < 'a'+quiz.OptionCount:
			out[i] = int(p[0] - 'a')
		default:
			return nil, fmt.Errorf("answer %d: %q is not one of a-%c", i+1, p, 'a'+quiz.OptionCount-1)
		}
	}
	return out, nil
}

func init() {
	addTopicFlag(quizCmd)
	quizCmd.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
	quizCmd.Flags().StringP("subject", "s", "", "Focus the quiz on this subject instead of the whole topic")
	quizCmd.Flags().Bool("reveal", false, "Mark the correct option of each question")
	quizCmd.Flags().String("answers", "", "Comma-separated answers (a-d) to submit")
}
