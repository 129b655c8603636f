package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimDueJobs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	due, err := s.EnqueueJob(ctx, models.JobMentorRating, baseTime, models.MentorRatingPayload{MentorID: "m1"})
	require.NoError(t, err)
	_, err = s.EnqueueJob(ctx, models.JobMentorRating, baseTime.Add(time.Hour), models.MentorRatingPayload{MentorID: "m2"})
	require.NoError(t, err)

	claimed, err := s.ClaimDueJobs(ctx, baseTime.Add(time.Second), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, due.ID, claimed[0].ID)
	assert.Equal(t, 1, claimed[0].Attempts)

	again, err := s.ClaimDueJobs(ctx, baseTime.Add(2*time.Second), time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestClaimReclaimsExpiredLease(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.EnqueueJob(ctx, models.JobCompletionRollback, baseTime, models.RollbackPayload{ProjectID: "p", RequestID: "r"})
	require.NoError(t, err)

	first, err := s.ClaimDueJobs(ctx, baseTime, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	reclaimed, err := s.ClaimDueJobs(ctx, baseTime.Add(2*time.Minute), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1)
	assert.Equal(t, 2, reclaimed[0].Attempts)
}

func TestRetryAndCompleteJob(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	job, err := s.EnqueueJob(ctx, models.JobMentorRating, baseTime, models.MentorRatingPayload{MentorID: "m1"})
	require.NoError(t, err)

	_, err = s.ClaimDueJobs(ctx, baseTime, time.Minute, 10)
	require.NoError(t, err)
	require.NoError(t, s.RetryJob(ctx, job.ID, "boom", baseTime.Add(10*time.Second), false))

	claimed, err := s.ClaimDueJobs(ctx, baseTime.Add(5*time.Second), time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)

	claimed, err = s.ClaimDueJobs(ctx, baseTime.Add(11*time.Second), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.NoError(t, s.CompleteJob(ctx, job.ID, baseTime.Add(12*time.Second)))

	jobs, err := s.ListJobs(ctx, models.JobMentorRating)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobCompleted, jobs[0].Status)
	assert.Equal(t, 2, jobs[0].Attempts)
	assert.Empty(t, jobs[0].LastError)
}
