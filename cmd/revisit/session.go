package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/revisit/internal/cli"
)

func newSessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Review every due item interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				session := cli.NewReviewSession(env.service, userID, cmd.InOrStdin(), env.presenter)
				if _, err := session.Run(cmd.Context()); err != nil {
					return fmt.Errorf("session.Run() > %w", err)
				}
				return nil
			})
		},
	}
}
