package main

import (
	"time"

	"github.com/ankitson/clankerhub/internal/service"
	"github.com/spf13/cobra"
)

func eventsCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events [task]",
		Short: "Show the journal of agent activity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			return c.withRuntime(nil, func(rt *service.Runtime) error {
				entries, err := rt.Events(cmd.Context(), ref, limit)
				if err != nil {
					return err
				}
				for _, e := range entries {
					printf(cmd.OutOrStdout(), "%s  %-8s %-17s %s\n",
						e.Time.Local().Format(time.DateTime), short(e.TaskID), e.Kind, e.Message)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "most recent entries to show (0 for all)")
	return cmd
}
