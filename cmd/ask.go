package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <file> <question>",
	Short: "Ask one question about a document",
	Args:  cobra.MinimumNArgs(2),
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

		reply, err := rt.study.SendMessage(ctx, name, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		fmt.Println(reply.Text)
		if show, _ := cmd.Flags().GetBool("sources"); show && len(reply.References) > 0 {
			fmt.Println()
			fmt.Println("Sources")
			fmt.Println(strings.Repeat("─", 60))
			for _, ref := range reply.References {
				fmt.Printf("p.%-4d %.2f  %s\n", ref.Page, ref.Score, ref.Excerpt)
			}
		}
		if len(reply.Sources) > 0 {
			fmt.Println()
			fmt.Println("Web")
			fmt.Println(strings.Repeat("─", 60))
			for _, src := range reply.Sources {
				fmt.Printf("%s\n  %s\n", src.Title, src.URL)
			}
		}
		return nil
	},
}

func init() {
	addTopicFlag(askCmd)
	askCmd.Flags().BoolP("sources", "s", false, "Show the passages the answer was grounded on")
}
