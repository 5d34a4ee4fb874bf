package main

import (
	"fmt"
	"strings"

	"github.com/ankitson/clankerhub/internal/agent"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/spf13/cobra"
)

func approveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <task>",
		Short: "Approve the proposed plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withRuntime(out, func(rt *service.Runtime) error {
				t, err := rt.Approve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printf(out, "%d subtasks and %d metrics created\n", len(t.Subtasks), len(t.ProgressMetrics))
				return nil
			})
		},
	}
}

func modifyCmd(c *cli) *cobra.Command {
	var (
		remove   []int
		add      []string
		approach string
	)
	cmd := &cobra.Command{
		Use:   "modify <task>",
		Short: "Edit the proposed plan before approving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := planEdits(remove, add, approach)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return c.withRuntime(out, func(rt *service.Runtime) error {
				t, err := rt.Modify(cmd.Context(), args[0], edits)
				if err != nil {
					return err
				}
				for i, st := range t.Plan.ProposedSubtasks {
					printf(out, "%d. %s\n", i+1, st.Title)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntSliceVar(&remove, "remove", nil, "1-based position of a proposed subtask to drop (repeatable)")
	cmd.Flags().StringArrayVar(&add, "add", nil, `subtask to append as "title" or "title:description" (repeatable)`)
	cmd.Flags().StringVar(&approach, "approach", "", "replacement approach")
	return cmd
}

func planEdits(remove []int, add []string, approach string) (agent.PlanEdits, error) {
	edits := agent.PlanEdits{Approach: strings.TrimSpace(approach)}
	for _, n := range remove {
		if n < 1 {
			return agent.PlanEdits{}, fmt.Errorf("--remove positions start at 1, got %d", n)
		}
		edits.RemoveIndices = append(edits.RemoveIndices, n-1)
	}
	for _, raw := range add {
		title, description, _ := strings.Cut(raw, ":")
		title = strings.TrimSpace(title)
		if title == "" {
			return agent.PlanEdits{}, fmt.Errorf("--add %q has no title", raw)
		}
		edits.Add = append(edits.Add, agent.SubtaskDraft{Title: title, Description: strings.TrimSpace(description)})
	}
	return edits, nil
}

func answerCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "answer <task> <question> <answer>",
		Short: "Answer a clarification question by number or id",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				t, err := rt.Answer(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%d questions left\n", len(t.UnansweredQuestions()))
				return nil
			})
		},
	}
}
