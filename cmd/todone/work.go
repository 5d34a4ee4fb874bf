package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/spf13/cobra"
)

func completeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task> <subtask>",
		Short: "Mark a subtask done by number or id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withRuntime(out, func(rt *service.Runtime) error {
				t, err := rt.Complete(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				printf(out, "%d/%d subtasks done\n", t.CompletedSubtasks(), len(t.Subtasks))
				return nil
			})
		},
	}
}

func executeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "execute <task> <subtask>",
		Short: "Run the skill bound to an automatable subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withRuntime(out, func(rt *service.Runtime) error {
				t, err := rt.Execute(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				st := findSubtask(t, args[1])
				if st != nil && st.AutomationResult != nil && st.AutomationResult.Output != "" {
					printf(out, "%s\n", st.AutomationResult.Output)
				}
				return nil
			})
		},
	}
}

func addSubtaskCmd(c *cli) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add-subtask <task> <title>",
		Short: "Append a subtask of your own",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				t, err := rt.AddSubtask(cmd.Context(), args[0], strings.Join(args[1:], " "), description)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Subtask %d added\n", len(t.Subtasks))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "subtask description")
	return cmd
}

func blockCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "block <task> [reason]",
		Short: "Mark a task blocked",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withRuntime(out, func(rt *service.Runtime) error {
				_, err := rt.Block(cmd.Context(), args[0], strings.Join(args[1:], " "))
				return err
			})
		},
	}
}

func metricCmd(c *cli) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "metric <task> <metric> <value>",
		Short: "Record a progress metric value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("parse value %q: %w", args[2], err)
			}
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				t, err := rt.UpdateMetric(cmd.Context(), args[0], args[1], value, note)
				if err != nil {
					return err
				}
				for _, m := range t.ProgressMetrics {
					printf(cmd.OutOrStdout(), "%s: %s/%s %s\n", m.Name,
						strconv.FormatFloat(m.CurrentValue, 'f', -1, 64),
						strconv.FormatFloat(m.TargetValue, 'f', -1, 64), m.Unit)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&note, "note", "n", "", "note stored with the value")
	return cmd
}

func progressCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "progress <task>",
		Short: "Analyze how far along a task is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				t, report, err := rt.Progress(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, report)
				}
				var b strings.Builder
				fmt.Fprintf(&b, "# %s: %d%%\n\n%s\n\n", t.Title, report.ProgressPercentage, report.Summary)
				if len(report.NextSteps) > 0 {
					b.WriteString("## Next steps\n\n")
					for _, s := range report.NextSteps {
						fmt.Fprintf(&b, "- %s\n", s)
					}
					b.WriteString("\n")
				}
				if len(report.Blockers) > 0 {
					b.WriteString("## Blockers\n\n")
					for _, s := range report.Blockers {
						fmt.Fprintf(&b, "- %s\n", s)
					}
				}
				return writeMarkdown(cmd, b.String(), 0)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// findSubtask resolves a 1-based position or id prefix for display.
func findSubtask(t task.Task, ref string) *task.Subtask {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(t.Subtasks) {
			return &t.Subtasks[n-1]
		}
		return nil
	}
	for i := range t.Subtasks {
		if strings.HasPrefix(t.Subtasks[i].ID, ref) {
			return &t.Subtasks[i]
		}
	}
	return nil
}
