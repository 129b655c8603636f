package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndFetchMessages(t *testing.T) {
	e := newEnv(t)
	p := e.inProgress()
	room := e.room(p.ID)

	for _, body := range []string{"hi", "can we start monday?", "sure"} {
		_, err := e.orch.SendMessage(e.ctx, e.learner.id, room.ID, body)
		require.NoError(t, err)
		e.clock.Advance(time.Second)
	}
	reply, err := e.orch.SendMessage(e.ctx, e.mentorA.id, room.ID, "monday works")
	require.NoError(t, err)
	assert.Equal(t, e.learner.id.UserID, reply.ReceiverID)

	got := e.room(p.ID)
	assert.Equal(t, 3, got.MentorUnread)
	assert.Equal(t, 1, got.LearnerUnread)
	assert.Equal(t, 4, got.TotalMessages)
	assert.Equal(t, "monday works", got.LastMessage)

	unread, err := e.orch.UnreadCount(e.ctx, e.mentorA.id)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	page, err := e.orch.FetchMessages(e.ctx, e.mentorA.id, room.ID, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Messages, 3)
	assert.Equal(t, "can we start monday?", page.Messages[0].Body)
	assert.Equal(t, "monday works", page.Messages[2].Body)

	got = e.room(p.ID)
	assert.Equal(t, 0, got.MentorUnread)
	assert.Equal(t, 1, got.LearnerUnread)

	var unreadRows int64
	e.gdb.Model(&models.MessageChat{}).Where("receiver_id = ? AND is_read = ?", e.mentorA.id.UserID, false).Count(&unreadRows)
	assert.Zero(t, unreadRows, "reading marks the whole room, not just the page")

	older, err := e.orch.FetchMessages(e.ctx, e.mentorA.id, room.ID, 2, 3)
	require.NoError(t, err)
	require.Len(t, older.Messages, 1)
	assert.Equal(t, "hi", older.Messages[0].Body)
	assert.False(t, older.HasMore)
}

func TestCheckNewMessages(t *testing.T) {
	e := newEnv(t)
	p := e.inProgress()
	room := e.room(p.ID)

	_, err := e.orch.SendMessage(e.ctx, e.learner.id, room.ID, "first")
	require.NoError(t, err)
	since := e.clock.Now()
	e.clock.Advance(time.Second)
	_, err = e.orch.SendMessage(e.ctx, e.learner.id, room.ID, "second")
	require.NoError(t, err)

	fresh, err := e.orch.CheckNewMessages(e.ctx, e.mentorA.id, room.ID, since)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "second", fresh[0].Body)
	assert.False(t, fresh[0].IsRead)
	assert.Equal(t, 2, e.room(p.ID).MentorUnread, "polling does not consume unread")
}

func TestMessagesRequireMembership(t *testing.T) {
	e := newEnv(t)
	p := e.inProgress()
	room := e.room(p.ID)

	_, err := e.orch.SendMessage(e.ctx, e.mentorB.id, room.ID, "hello?")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	_, err = e.orch.FetchMessages(e.ctx, e.other.id, room.ID, 1, 10)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	_, err = e.orch.SendMessage(e.ctx, e.learner.id, room.ID, "   ")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = e.orch.SendMessage(e.ctx, e.learner.id, uuid.New(), "hi")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	assert.True(t, apperr.Is(e.orch.CanSend(e.ctx, e.mentorB.id, room.ID), apperr.CodeForbidden))
	assert.NoError(t, e.orch.CanSend(e.ctx, e.mentorA.id, room.ID))
}

func TestClosedRoomRejectsMessages(t *testing.T) {
	e := newEnv(t)
	p := e.inProgress()
	room := e.room(p.ID)

	_, err := e.orch.RaiseRequest(e.ctx, e.learner.id, p.ID, models.RequestCancel, "")
	require.NoError(t, err)
	_, err = e.orch.RespondRequest(e.ctx, e.mentorA.id, p.ID, models.DecisionApprove, "")
	require.NoError(t, err)
	_, err = e.orch.SubmitReview(e.ctx, e.learner.id, p.ID, scores(3), "")
	require.NoError(t, err)
	_, err = e.orch.SubmitReview(e.ctx, e.mentorA.id, p.ID, scores(3), "")
	require.NoError(t, err)

	_, err = e.orch.SendMessage(e.ctx, e.learner.id, room.ID, "one more thing")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	_, err = e.orch.SendImageMessage(e.ctx, e.mentorA.id, room.ID, "/uploads/x.png", "")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.True(t, apperr.Is(e.orch.CanSend(e.ctx, e.mentorA.id, room.ID), apperr.CodeConflict))

	// history stays readable
	page, err := e.orch.FetchMessages(e.ctx, e.learner.id, room.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
}

func TestImageMessagesAndSoftDelete(t *testing.T) {
	e := newEnv(t)
	p := e.inProgress()
	room := e.room(p.ID)

	img, err := e.orch.SendImageMessage(e.ctx, e.mentorA.id, room.ID, "/uploads/diagram.png", "")
	require.NoError(t, err)
	assert.Equal(t, models.MessageImage, img.Kind)
	assert.Equal(t, "📷 Image", e.room(p.ID).LastMessage)

	err = e.orch.DeleteMessage(e.ctx, e.learner.id, room.ID, img.ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden), "only the sender deletes")
	require.NoError(t, e.orch.DeleteMessage(e.ctx, e.mentorA.id, room.ID, img.ID))

	page, err := e.orch.FetchMessages(e.ctx, e.learner.id, room.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.True(t, page.Messages[0].IsDeleted)
	assert.Equal(t, "This message was deleted", page.Messages[0].Body)
	assert.Empty(t, page.Messages[0].ImageURL)
}

func TestRoomViews(t *testing.T) {
	e := newEnv(t)
	p := e.inProgress()
	room := e.room(p.ID)

	rooms, err := e.orch.ListRooms(e.ctx, e.learner.id, false)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)
	assert.Equal(t, "Arun Mentor", rooms[0].Counterpart.Name)
	assert.Equal(t, models.RoleMentor, rooms[0].Counterpart.Role)
	assert.Equal(t, "Budget tracker", rooms[0].ProjectName)

	view, err := e.orch.SetWallpaper(e.ctx, e.mentorA.id, room.ID, "https://img.example.com/forest.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/forest.jpg", view.Wallpaper)
	assert.Equal(t, "Lena Learner", view.Counterpart.Name)

	learnerView, err := e.orch.GetRoom(e.ctx, e.learner.id, room.ID)
	require.NoError(t, err)
	assert.Empty(t, learnerView.Wallpaper)

	none, err := e.orch.ListRooms(e.ctx, e.mentorB.id, true)
	require.NoError(t, err)
	assert.Empty(t, none)
}
