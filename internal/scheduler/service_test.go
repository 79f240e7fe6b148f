package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_catalog "github.com/at-ishikawa/revisit/internal/mocks/catalog"
	mock_repetition "github.com/at-ishikawa/revisit/internal/mocks/repetition"
	"github.com/at-ishikawa/revisit/internal/repetition"
)

const testScheduleItemID = "5d8f2b1e-6a7c-4e3d-9b2a-1c0f4e5d6a7b"

var (
	testNow  = time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	twoSum   = repetition.ReviewableRef{ItemID: 1, Slug: "two-sum", Name: "Two Sum", Difficulty: "easy", Topic: "arrays"}
	lruCache = repetition.ReviewableRef{ItemID: 146, Slug: "lru-cache", Name: "LRU Cache", Difficulty: "medium", Topic: "design"}
)

func newTestService(t *testing.T) (*Service, *mock_repetition.MockRepository, *mock_catalog.MockCatalog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock_repetition.NewMockRepository(ctrl)
	cat := mock_catalog.NewMockCatalog(ctrl)
	s := NewService(repo, cat,
		WithClock(func() time.Time { return testNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(func() string { return testScheduleItemID }),
	)
	return s, repo, cat
}

func scheduled(ref repetition.ReviewableRef, level int, due time.Time) repetition.ScheduleItem {
	return repetition.ScheduleItem{
		ID:            testScheduleItemID,
		UserID:        "alice",
		ReviewableRef: ref,
		ReviewLevel:   level,
		DueDate:       &due,
		CreatedAt:     testNow.AddDate(0, 0, -10),
		UpdatedAt:     testNow.AddDate(0, 0, -10),
	}
}

func TestService_Add(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		identifier string
		setup      func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog)
		want       repetition.ScheduleItem
		wantErr    error
	}{
		{
			name:       "adds a completed item by slug at level 0 due now",
			userID:     "alice",
			identifier: "two-sum",
			setup: func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog) {
				cat.EXPECT().CompletedItems(gomock.Any(), "alice").Return([]repetition.ReviewableRef{lruCache, twoSum}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, item repetition.ScheduleItem) error {
					assert.Equal(t, twoSum, item.ReviewableRef)
					return nil
				})
			},
			want: repetition.ScheduleItem{
				ID:            testScheduleItemID,
				UserID:        "alice",
				ReviewableRef: twoSum,
				ReviewLevel:   0,
				DueDate:       &testNow,
				CreatedAt:     testNow,
				UpdatedAt:     testNow,
			},
		},
		{
			name:       "adds a completed item by item id",
			userID:     "alice",
			identifier: "146",
			setup: func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog) {
				cat.EXPECT().CompletedItems(gomock.Any(), "alice").Return([]repetition.ReviewableRef{twoSum, lruCache}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: repetition.ScheduleItem{
				ID:            testScheduleItemID,
				UserID:        "alice",
				ReviewableRef: lruCache,
				DueDate:       &testNow,
				CreatedAt:     testNow,
				UpdatedAt:     testNow,
			},
		},
		{
			name:       "item the user has not completed",
			userID:     "alice",
			identifier: "median-of-two-sorted-arrays",
			setup: func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog) {
				cat.EXPECT().CompletedItems(gomock.Any(), "alice").Return([]repetition.ReviewableRef{twoSum}, nil)
			},
			wantErr: repetition.ErrNotFound,
		},
		{
			name:       "item that is already scheduled",
			userID:     "alice",
			identifier: "two-sum",
			setup: func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog) {
				cat.EXPECT().CompletedItems(gomock.Any(), "alice").Return([]repetition.ReviewableRef{twoSum}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repetition.ErrAlreadyExists)
			},
			wantErr: repetition.ErrAlreadyExists,
		},
		{
			name:       "schedule item id cannot be added",
			userID:     "alice",
			identifier: testScheduleItemID,
			setup:      func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog) {},
			wantErr:    repetition.ErrInvalidArgument,
		},
		{
			name:       "empty identifier",
			userID:     "alice",
			identifier: "",
			setup:      func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog) {},
			wantErr:    repetition.ErrInvalidArgument,
		},
		{
			name:       "missing user",
			userID:     "",
			identifier: "two-sum",
			setup:      func(repo *mock_repetition.MockRepository, cat *mock_catalog.MockCatalog) {},
			wantErr:    repetition.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, cat := newTestService(t)
			tt.setup(repo, cat)

			got, err := s.Add(context.Background(), tt.userID, tt.identifier)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Add_CatalogError(t *testing.T) {
	s, _, cat := newTestService(t)
	cat.EXPECT().CompletedItems(gomock.Any(), "alice").Return(nil, errors.New("catalog unavailable"))

	_, err := s.Add(context.Background(), "alice", "two-sum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")
}

func TestService_Remove(t *testing.T) {
	s, repo, _ := newTestService(t)
	item := scheduled(twoSum, 3, testNow)
	repo.EXPECT().Delete(gomock.Any(), "alice", repetition.Identifier{Kind: repetition.BySlug, Slug: "two-sum"}).Return(item, nil)

	got, err := s.Remove(context.Background(), "alice", "two-sum")
	require.NoError(t, err)
	assert.Equal(t, item, got)

	repo.EXPECT().Delete(gomock.Any(), "alice", repetition.ItemIdentifier(1)).Return(repetition.ScheduleItem{}, repetition.ErrNotFound)
	_, err = s.Remove(context.Background(), "alice", "1")
	assert.ErrorIs(t, err, repetition.ErrNotFound)
}

func TestService_ListAvailable(t *testing.T) {
	s, repo, cat := newTestService(t)
	validParens := repetition.ReviewableRef{ItemID: 20, Slug: "valid-parentheses", Name: "Valid Parentheses"}
	cat.EXPECT().CompletedItems(gomock.Any(), "alice").Return([]repetition.ReviewableRef{twoSum, validParens, lruCache}, nil)
	repo.EXPECT().FindByUser(gomock.Any(), "alice").Return([]repetition.ScheduleItem{scheduled(lruCache, 1, testNow)}, nil)

	got, err := s.ListAvailable(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []repetition.ReviewableRef{twoSum, validParens}, got)
}

func TestService_ListAvailable_NothingCompleted(t *testing.T) {
	s, repo, cat := newTestService(t)
	cat.EXPECT().CompletedItems(gomock.Any(), "bob").Return(nil, nil)
	repo.EXPECT().FindByUser(gomock.Any(), "bob").Return(nil, nil)

	got, err := s.ListAvailable(context.Background(), "bob")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_DueReviews(t *testing.T) {
	s, repo, _ := newTestService(t)
	overdue := scheduled(twoSum, 2, testNow.Add(-48*time.Hour))
	overdue.ID = "b"
	dueNow := scheduled(lruCache, 0, testNow)
	dueNow.ID = "a"
	repo.EXPECT().FindDue(gomock.Any(), "alice", testNow).Return([]repetition.ScheduleItem{dueNow, overdue}, nil)

	got, err := s.DueReviews(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestService_AllScheduled(t *testing.T) {
	s, repo, _ := newTestService(t)
	today := scheduled(twoSum, 0, testNow)
	today.ID = "today"
	later := scheduled(lruCache, 7, testNow.AddDate(0, 2, 0))
	later.ID = "later"
	repo.EXPECT().FindByUser(gomock.Any(), "alice").Return([]repetition.ScheduleItem{today, later}, nil)

	got, err := s.AllScheduled(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got.DueToday, 1)
	assert.Equal(t, "today", got.DueToday[0].ID)
	assert.Empty(t, got.DueThisWeek)
	assert.Empty(t, got.DueThisMonth)
	require.Len(t, got.DueLater, 1)
	assert.Equal(t, "later", got.DueLater[0].ID)
	assert.Len(t, got.All, 2)
}

// recordWith makes the mock repository apply the transition to current the
// way the database repository does inside its transaction.
func recordWith(current repetition.ScheduleItem) func(context.Context, string, repetition.Identifier, repetition.ApplyFunc) (repetition.ScheduleItem, repetition.ReviewHistoryEntry, error) {
	return func(_ context.Context, _ string, _ repetition.Identifier, apply repetition.ApplyFunc) (repetition.ScheduleItem, repetition.ReviewHistoryEntry, error) {
		item, entry := apply(current)
		entry.ID = 1
		return item, entry, nil
	}
}

func TestService_SubmitReview(t *testing.T) {
	tests := []struct {
		name          string
		level         int
		review        repetition.Review
		wantLevel     int
		wantDue       time.Time
		wantSuccessful bool
	}{
		{
			name:          "success on a new item moves to level 1 due tomorrow",
			level:         0,
			review:        repetition.Review{Successful: true},
			wantLevel:     1,
			wantDue:       testNow.AddDate(0, 0, 1),
			wantSuccessful: true,
		},
		{
			name:          "success with easy option at level 4 is due in 8 days",
			level:         4,
			review:        repetition.Review{Successful: true, Option: repetition.ReviewOptionEasy},
			wantLevel:     5,
			wantDue:       testNow.AddDate(0, 0, 8),
			wantSuccessful: true,
		},
		{
			name:          "failure moves one level down without resetting",
			level:         5,
			review:        repetition.Review{Successful: false, Option: repetition.ReviewOptionForgot},
			wantLevel:     4,
			wantDue:       testNow.AddDate(0, 0, 5),
			wantSuccessful: false,
		},
		{
			name:          "failure at level 0 stays at level 0",
			level:         0,
			review:        repetition.Review{Successful: false},
			wantLevel:     0,
			wantDue:       testNow.AddDate(0, 0, 1),
			wantSuccessful: false,
		},
		{
			name:          "success at the top level stays at level 7",
			level:         7,
			review:        repetition.Review{Successful: true},
			wantLevel:     7,
			wantDue:       testNow.AddDate(0, 0, 21),
			wantSuccessful: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, _ := newTestService(t)
			current := scheduled(twoSum, tt.level, testNow.Add(-time.Hour))
			repo.EXPECT().
				RecordReview(gomock.Any(), "alice", repetition.Identifier{Kind: repetition.BySlug, Slug: "two-sum"}, gomock.Any()).
				DoAndReturn(recordWith(current))

			got, err := s.SubmitReview(context.Background(), "alice", "two-sum", tt.review)
			require.NoError(t, err)

			assert.Equal(t, tt.wantLevel, got.Item.ReviewLevel)
			require.NotNil(t, got.Item.DueDate)
			assert.Equal(t, tt.wantDue, *got.Item.DueDate)
			require.NotNil(t, got.Item.LastReviewedAt)
			assert.Equal(t, testNow, *got.Item.LastReviewedAt)

			assert.Equal(t, tt.level, got.Entry.LevelBefore)
			assert.Equal(t, tt.wantLevel, got.Entry.LevelAfter)
			assert.Equal(t, tt.wantSuccessful, got.Entry.WasSuccessful)
			assert.Equal(t, tt.review.Option, got.Entry.ReviewOption)
			assert.Equal(t, testNow, got.Entry.ReviewedAt)
		})
	}
}

func TestService_SubmitReview_Errors(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		identifier string
		review     repetition.Review
		setup      func(repo *mock_repetition.MockRepository)
		wantErr    error
	}{
		{
			name:       "option contradicts the outcome",
			userID:     "alice",
			identifier: "two-sum",
			review:     repetition.Review{Successful: true, Option: repetition.ReviewOptionForgot},
			setup:      func(repo *mock_repetition.MockRepository) {},
			wantErr:    repetition.ErrInvalidArgument,
		},
		{
			name:       "unscheduled item",
			userID:     "alice",
			identifier: "two-sum",
			review:     repetition.Review{Successful: true},
			setup: func(repo *mock_repetition.MockRepository) {
				repo.EXPECT().RecordReview(gomock.Any(), "alice", gomock.Any(), gomock.Any()).
					Return(repetition.ScheduleItem{}, repetition.ReviewHistoryEntry{}, repetition.ErrNotFound)
			},
			wantErr: repetition.ErrNotFound,
		},
		{
			name:       "schedule item of another user",
			userID:     "bob",
			identifier: testScheduleItemID,
			review:     repetition.Review{Successful: true},
			setup: func(repo *mock_repetition.MockRepository) {
				repo.EXPECT().RecordReview(gomock.Any(), "bob", gomock.Any(), gomock.Any()).
					Return(repetition.ScheduleItem{}, repetition.ReviewHistoryEntry{}, repetition.ErrUnauthorized)
			},
			wantErr: repetition.ErrUnauthorized,
		},
		{
			name:       "stored state is inconsistent",
			userID:     "alice",
			identifier: "two-sum",
			review:     repetition.Review{Successful: false},
			setup: func(repo *mock_repetition.MockRepository) {
				repo.EXPECT().RecordReview(gomock.Any(), "alice", gomock.Any(), gomock.Any()).
					Return(repetition.ScheduleItem{}, repetition.ReviewHistoryEntry{}, repetition.ErrInvalidState)
			},
			wantErr: repetition.ErrInvalidState,
		},
		{
			name:       "missing user",
			userID:     "",
			identifier: "two-sum",
			review:     repetition.Review{Successful: true},
			setup:      func(repo *mock_repetition.MockRepository) {},
			wantErr:    repetition.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, _ := newTestService(t)
			tt.setup(repo)

			_, err := s.SubmitReview(context.Background(), tt.userID, tt.identifier, tt.review)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_SubmitReview_Sequence(t *testing.T) {
	s, repo, _ := newTestService(t)
	current := scheduled(twoSum, 0, testNow)
	repo.EXPECT().RecordReview(gomock.Any(), "alice", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ repetition.Identifier, apply repetition.ApplyFunc) (repetition.ScheduleItem, repetition.ReviewHistoryEntry, error) {
			item, entry := apply(current)
			current = item
			return item, entry, nil
		}).Times(6)

	outcomes := []bool{true, true, true, true, true, false}
	var levels []int
	for _, successful := range outcomes {
		got, err := s.SubmitReview(context.Background(), "alice", "two-sum", repetition.Review{Successful: successful})
		require.NoError(t, err)
		levels = append(levels, got.Item.ReviewLevel)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 4}, levels)
	assert.Equal(t, testNow.AddDate(0, 0, 5), *current.DueDate)
}

func TestService_PreviewReview(t *testing.T) {
	s, repo, _ := newTestService(t)
	current := scheduled(twoSum, 3, testNow.Add(-time.Hour))
	repo.EXPECT().FindOne(gomock.Any(), "alice", repetition.ItemIdentifier(1)).Return(current, nil).Times(2)

	got, err := s.PreviewReview(context.Background(), "alice", "1", true)
	require.NoError(t, err)
	assert.Equal(t, Preview{
		Item:             current,
		LevelBefore:      3,
		LevelAfter:       4,
		DueDate:          testNow.AddDate(0, 0, 5),
		RetentionPercent: 80,
	}, got)

	got, err = s.PreviewReview(context.Background(), "alice", "1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LevelAfter)
	assert.Equal(t, testNow.AddDate(0, 0, 2), got.DueDate)
	assert.Equal(t, 60, got.RetentionPercent)
	assert.Equal(t, 3, current.ReviewLevel)
}

func TestService_History(t *testing.T) {
	s, repo, _ := newTestService(t)
	current := scheduled(twoSum, 2, testNow)
	entries := []repetition.ReviewHistoryEntry{
		{ID: 1, ScheduleItemID: testScheduleItemID, UserID: "alice", ReviewedAt: testNow.AddDate(0, 0, -2), WasSuccessful: true, LevelBefore: 0, LevelAfter: 1},
		{ID: 2, ScheduleItemID: testScheduleItemID, UserID: "alice", ReviewedAt: testNow.AddDate(0, 0, -1), WasSuccessful: true, LevelBefore: 1, LevelAfter: 2},
	}
	repo.EXPECT().FindOne(gomock.Any(), "alice", repetition.Identifier{Kind: repetition.BySlug, Slug: "two-sum"}).Return(current, nil)
	repo.EXPECT().FindHistory(gomock.Any(), testScheduleItemID).Return(entries, nil)

	item, got, err := s.History(context.Background(), "alice", "two-sum")
	require.NoError(t, err)
	assert.Equal(t, current, item)
	assert.Equal(t, entries, got)
}

func TestService_Stats(t *testing.T) {
	s, repo, _ := newTestService(t)
	reviewedAt := testNow.Add(-time.Hour)
	reviewed := scheduled(twoSum, 1, testNow.AddDate(0, 0, 1))
	reviewed.LastReviewedAt = &reviewedAt
	fresh := scheduled(lruCache, 0, testNow)
	repo.EXPECT().FindByUser(gomock.Any(), "alice").Return([]repetition.ScheduleItem{reviewed, fresh}, nil)
	repo.EXPECT().FindHistoryByUser(gomock.Any(), "alice").Return([]repetition.ReviewHistoryEntry{
		{ID: 1, ScheduleItemID: testScheduleItemID, UserID: "alice", ReviewedAt: reviewedAt, WasSuccessful: true, LevelAfter: 1},
	}, nil)

	got, err := s.Stats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalItems)
	assert.Equal(t, 1, got.TotalReviewed)
	assert.Equal(t, 1, got.TotalReviews)
	assert.Equal(t, 1, got.DueNow)
	assert.Equal(t, 1, got.DueThisWeek)
	assert.Equal(t, 1, got.CompletedToday)
	assert.Equal(t, 1, got.ByLevel[0])
	assert.Equal(t, 1, got.ByLevel[1])
	assert.Equal(t, 0, got.ByLevel[7])
}

func TestService_Stats_RepositoryError(t *testing.T) {
	s, repo, _ := newTestService(t)
	repo.EXPECT().FindByUser(gomock.Any(), "alice").Return(nil, errors.New("connection refused"))

	_, err := s.Stats(context.Background(), "alice")
	assert.Error(t, err)
}
