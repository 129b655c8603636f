package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRoom(t *testing.T, s *store.Store) *models.MessageRoom {
	t.Helper()
	r := &models.MessageRoom{
		ProjectID: uuid.New(),
		LearnerID: uuid.New(),
		MentorID:  uuid.New(),
		Status:    models.RoomOpen,
	}
	require.NoError(t, s.CreateRoom(context.Background(), r))
	return r
}

func TestRecordMessageOnlyTouchesOpenRooms(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	r := createRoom(t, s)
	sender := uuid.New()

	ok, err := s.RecordMessage(ctx, r.ID, models.RoleMentor, "hello", sender, baseTime)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MentorUnread)
	assert.Equal(t, 0, got.LearnerUnread)
	assert.Equal(t, 1, got.TotalMessages)
	assert.Equal(t, "hello", got.LastMessage)

	changed, err := s.CloseRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.CloseRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	ok, err = s.RecordMessage(ctx, r.ID, models.RoleMentor, "late", sender, baseTime)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListRoomsForParty(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	r := createRoom(t, s)
	closed := &models.MessageRoom{ProjectID: uuid.New(), LearnerID: r.LearnerID, MentorID: uuid.New(), Status: models.RoomOpen}
	require.NoError(t, s.CreateRoom(ctx, closed))
	_, err := s.CloseRoom(ctx, closed.ID)
	require.NoError(t, err)

	open, err := s.ListRoomsForParty(ctx, models.RoleLearner, r.LearnerID, false)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, r.ID, open[0].ID)

	all, err := s.ListRoomsForParty(ctx, models.RoleLearner, r.LearnerID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := s.ListRoomsForParty(ctx, models.RoleMentor, r.MentorID, false)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestTotalUnread(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	r := createRoom(t, s)
	for i := 0; i < 3; i++ {
		_, err := s.RecordMessage(ctx, r.ID, models.RoleLearner, "ping", uuid.New(), baseTime)
		require.NoError(t, err)
	}

	n, err := s.TotalUnread(ctx, models.RoleLearner, r.LearnerID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, s.ResetUnread(ctx, r.ID, models.RoleLearner))
	n, err = s.TotalUnread(ctx, models.RoleLearner, r.LearnerID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestMessagesPagingAndRead(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	r := createRoom(t, s)
	learnerUser, mentorUser := uuid.New(), uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateMessage(ctx, &models.MessageChat{
			RoomID: r.ID, SenderID: mentorUser, ReceiverID: learnerUser,
			Kind: models.MessageText, Body: string(rune('a' + i)),
			CreatedAt: baseTime.Add(time.Duration(i) * time.Second),
		}))
	}

	page, total, err := s.ListMessages(ctx, r.ID, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "e", page[0].Body)
	assert.Equal(t, "d", page[1].Body)

	since, err := s.MessagesSince(ctx, r.ID, baseTime.Add(2*time.Second), 50)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "d", since[0].Body)

	n, err := s.MarkRead(ctx, r.ID, learnerUser, baseTime)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	n, err = s.MarkRead(ctx, r.ID, mentorUser, baseTime)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, s.SoftDeleteMessage(ctx, page[0].ID))
	got, err := s.GetMessage(ctx, page[0].ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}
