package main

import (
	"strings"

	"github.com/ankitson/clankerhub/internal/render"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/spf13/cobra"
)

func skillsCmd(c *cli) *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List the skills available for automation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				dirs := rt.Skills()
				if match != "" {
					dirs = []skill.Directory{{
						ID:     "match",
						Name:   "Skills matching " + match,
						Skills: rt.MatchSkills(match),
					}}
				}
				return writeMarkdown(cmd, render.SkillsMarkdown(dirs), 0)
			})
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "only skills sharing a word with this text")
	return cmd
}

func suggestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <work>",
		Short: "Ask the agent which skills fit a piece of work",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.withRuntime(out, func(rt *service.Runtime) error {
				selections, err := rt.Suggest(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if len(selections) == 0 {
					printf(out, "No matching skills.\n")
					return nil
				}
				for _, s := range selections {
					printf(out, "%s\n", s.SkillID)
				}
				return nil
			})
		},
	}
}
