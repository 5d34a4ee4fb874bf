package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ankitson/clankerhub/internal/render"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func addCmd(c *cli) *cobra.Command {
	var (
		description string
		priority    string
		tags        []string
		due         string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task and let the agent research and plan it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.NewTask{
				Title:       strings.Join(args, " "),
				Description: description,
				Priority:    task.Priority(priority),
				Tags:        tags,
			}
			if due != "" {
				d, err := time.Parse(time.DateOnly, due)
				if err != nil {
					return fmt.Errorf("parse --due: %w", err)
				}
				in.DueDate = &d
			}
			out := cmd.OutOrStdout()
			return c.withRuntime(out, func(rt *service.Runtime) error {
				t, err := rt.Add(cmd.Context(), in)
				if err != nil {
					return err
				}
				printf(out, "Task %s is %s. Review it with: todone show %s\n", short(t.ID), t.Status, short(t.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium, high or urgent")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func listCmd(c *cli) *cobra.Command {
	var f service.Filter
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.Status = task.Status(status)
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				items, err := rt.List(cmd.Context(), f)
				if err != nil {
					return err
				}
				render.TaskList(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status")
	cmd.Flags().StringVar(&f.Tag, "tag", "", "only tasks with this tag")
	cmd.Flags().StringVar(&f.Search, "search", "", "text search over title and description")
	cmd.Flags().BoolVar(&f.Active, "active", false, "exclude completed tasks")
	return cmd
}

func showCmd(c *cli) *cobra.Command {
	var (
		asJSON bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "show <task>",
		Short: "Show a task with its plan and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				t, err := rt.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, t)
				}
				return writeMarkdown(cmd, render.TaskMarkdown(t), width)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the task as JSON")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "word wrap width")
	return cmd
}

func deleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				if err := rt.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func exportCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				data, err := rt.Export(cmd.Context())
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				log.Info().Str("path", output).Msg("tasks exported")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				n, err := rt.Import(cmd.Context(), data)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Imported %d tasks\n", n)
				return nil
			})
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeMarkdown(cmd *cobra.Command, md string, width int) error {
	out, err := render.Markdown(md, width)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "%s", out)
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
