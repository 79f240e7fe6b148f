package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
)

// ReviewService is the part of the scheduler a review session needs.
type ReviewService interface {
	DueReviews(ctx context.Context, userID string) ([]repetition.ScheduleItem, error)
	SubmitReview(ctx context.Context, userID, identifier string, review repetition.Review) (scheduler.ReviewResult, error)
}

// SessionSummary counts what happened in a review session.
type SessionSummary struct {
	Remembered int
	Forgotten  int
	Skipped    int
}

// ReviewSession walks through the due items and asks for each outcome.
type ReviewSession struct {
	service     ReviewService
	userID      string
	stdinReader *bufio.Reader
	presenter   *Presenter
}

func NewReviewSession(service ReviewService, userID string, stdin io.Reader, presenter *Presenter) *ReviewSession {
	return &ReviewSession{
		service:     service,
		userID:      userID,
		stdinReader: bufio.NewReader(stdin),
		presenter:   presenter,
	}
}

var errQuit = errors.New("quit")

const sessionPrompt = "Remembered? [y]es [n]o [e]asy [d]ifficult [f]orgot [s]kip [q]uit: "

// Run stops at the end of input, on "q" or when ctx is done.
func (s *ReviewSession) Run(ctx context.Context) (SessionSummary, error) {
	var summary SessionSummary

	items, err := s.service.DueReviews(ctx, s.userID)
	if err != nil {
		return summary, fmt.Errorf("DueReviews() > %w", err)
	}
	if err := s.presenter.PrintItems("Due now", items); err != nil {
		return summary, err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		review, skip, err := s.ask(item)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}
		if skip {
			summary.Skipped++
			continue
		}

		result, err := s.service.SubmitReview(ctx, s.userID, item.ID, review)
		if err != nil {
			return summary, fmt.Errorf("SubmitReview(%s) > %w", item.Slug, err)
		}
		if review.Successful {
			summary.Remembered++
		} else {
			summary.Forgotten++
		}
		if err := s.presenter.PrintReviewResult(result); err != nil {
			return summary, err
		}
	}

	s.presenter.printf(s.presenter.bold, "\nRemembered %d, forgotten %d, skipped %d\n",
		summary.Remembered, summary.Forgotten, summary.Skipped)
	return summary, s.presenter.flush()
}

func (s *ReviewSession) ask(item repetition.ScheduleItem) (repetition.Review, bool, error) {
	for {
		s.presenter.printf(nil, "\n")
		s.presenter.item(item)
		s.presenter.printf(nil, "%s", sessionPrompt)
		if err := s.presenter.flush(); err != nil {
			return repetition.Review{}, false, err
		}

		line, err := s.stdinReader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return repetition.Review{}, false, err
		}

		review, skip, parseErr := parseAnswer(line)
		if parseErr == nil || errors.Is(parseErr, errQuit) {
			return review, skip, parseErr
		}
		s.presenter.printf(s.presenter.red, "%v\n", parseErr)
	}
}

func parseAnswer(line string) (repetition.Review, bool, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return repetition.Review{Successful: true}, false, nil
	case "e", "easy":
		return repetition.Review{Successful: true, Option: repetition.ReviewOptionEasy}, false, nil
	case "d", "difficult":
		return repetition.Review{Successful: true, Option: repetition.ReviewOptionDifficult}, false, nil
	case "n", "no":
		return repetition.Review{Successful: false}, false, nil
	case "f", "forgot":
		return repetition.Review{Successful: false, Option: repetition.ReviewOptionForgot}, false, nil
	case "s", "skip":
		return repetition.Review{}, true, nil
	case "q", "quit":
		return repetition.Review{}, false, errQuit
	default:
		return repetition.Review{}, false, fmt.Errorf("unknown answer %q", strings.TrimSpace(line))
	}
}
