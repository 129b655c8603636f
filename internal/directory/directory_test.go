package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/db/dbtest"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/directory"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookups(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	dir := directory.New(gdb)

	user := models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleMentor}
	require.NoError(t, gdb.Create(&user).Error)
	mentor := models.Mentor{UserID: user.ID}
	require.NoError(t, gdb.Create(&mentor).Error)

	got, err := dir.MentorByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, mentor.ID, got.ID)

	byID, err := dir.GetMentor(ctx, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byID.UserID)

	u, err := dir.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	_, err = dir.LearnerByUserID(ctx, user.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestUpdateMentorRating(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	dir := directory.New(gdb)

	mentor := models.Mentor{UserID: uuid.New()}
	require.NoError(t, gdb.Create(&mentor).Error)

	require.NoError(t, dir.UpdateMentorRating(ctx, mentor.ID, 4.3, 3))
	got, err := dir.GetMentor(ctx, mentor.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.3, got.Rating, 0.0001)
	assert.Equal(t, 3, got.RatingCount)

	err = dir.UpdateMentorRating(ctx, uuid.New(), 1, 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
