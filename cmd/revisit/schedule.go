package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <item id or slug>",
		Short: "Add a completed item to the review schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				item, err := env.service.Add(cmd.Context(), userID, args[0])
				if errors.Is(err, repetition.ErrAlreadyExists) {
					return env.presenter.PrintAlreadyScheduled(args[0])
				}
				if err != nil {
					return fmt.Errorf("service.Add(%s) > %w", args[0], err)
				}
				return env.presenter.PrintScheduled(item)
			})
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <schedule id, item id or slug>",
		Short: "Remove an item and its review history from the schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				item, err := env.service.Remove(cmd.Context(), userID, args[0])
				if err != nil {
					return fmt.Errorf("service.Remove(%s) > %w", args[0], err)
				}
				return env.presenter.PrintRemoved(item)
			})
		},
	}
}

func newAvailableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List completed items that are not scheduled yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				refs, err := env.service.ListAvailable(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("service.ListAvailable() > %w", err)
				}
				return env.presenter.PrintAvailable(refs)
			})
		},
	}
}

func newDueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List items due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				items, err := env.service.DueReviews(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("service.DueReviews() > %w", err)
				}
				return env.presenter.PrintItems("Due now", items)
			})
		},
	}
}

func newScheduledCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduled",
		Short: "List every scheduled item grouped by when it is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				buckets, err := env.service.AllScheduled(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("service.AllScheduled() > %w", err)
				}
				return env.presenter.PrintBuckets(buckets)
			})
		},
	}
}

func newReviewCommand() *cobra.Command {
	var outcome OutcomeFlag
	var option ReviewOptionFlag

	cmd := &cobra.Command{
		Use:   "review <schedule id, item id or slug>",
		Short: "Record the outcome of a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review := repetition.Review{
				Successful: outcome.Successful(),
				Option:     repetition.ReviewOption(option),
			}
			return withEnvironment(cmd, func(env *environment, userID string) error {
				result, err := env.service.SubmitReview(cmd.Context(), userID, args[0], review)
				if err != nil {
					return fmt.Errorf("service.SubmitReview(%s) > %w", args[0], err)
				}
				return env.presenter.PrintReviewResult(result)
			})
		},
	}
	cmd.Flags().Var(&outcome, "outcome", "review outcome: success or failure")
	cmd.Flags().Var(&option, "option", "self-assessment: easy, difficult or forgot")
	_ = cmd.MarkFlagRequired("outcome")
	return cmd
}

func newPreviewCommand() *cobra.Command {
	var outcome OutcomeFlag

	cmd := &cobra.Command{
		Use:   "preview <schedule id, item id or slug>",
		Short: "Show where an item would move for a review outcome without recording it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				preview, err := env.service.PreviewReview(cmd.Context(), userID, args[0], outcome.Successful())
				if err != nil {
					return fmt.Errorf("service.PreviewReview(%s) > %w", args[0], err)
				}
				return env.presenter.PrintPreview(preview, outcome.Successful())
			})
		},
	}
	cmd.Flags().Var(&outcome, "outcome", "review outcome: success or failure")
	_ = cmd.MarkFlagRequired("outcome")
	return cmd
}

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <schedule id, item id or slug>",
		Short: "Show the review history of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				item, entries, err := env.service.History(cmd.Context(), userID, args[0])
				if err != nil {
					return fmt.Errorf("service.History(%s) > %w", args[0], err)
				}
				return env.presenter.PrintHistory(item, entries)
			})
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment, userID string) error {
				stats, err := env.service.Stats(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("service.Stats() > %w", err)
				}
				return env.presenter.PrintStats(stats)
			})
		},
	}
}

func newLadderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ladder",
		Short: "Show the review intervals and retention estimates of every level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The ladder is fixed, so no configuration or database is needed
			return newPresenter(cmd).PrintLadder(repetition.Ladder())
		},
	}
}
