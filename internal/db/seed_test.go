package db_test

import (
	"testing"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/db"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/db/dbtest"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedIsIdempotent(t *testing.T) {
	gdb := dbtest.Open(t)

	require.NoError(t, db.Seed(gdb, zap.NewNop()))
	require.NoError(t, db.Seed(gdb, zap.NewNop()))

	var users, learners, mentors int64
	gdb.Model(&models.User{}).Count(&users)
	gdb.Model(&models.Learner{}).Count(&learners)
	gdb.Model(&models.Mentor{}).Count(&mentors)

	assert.EqualValues(t, 3, users)
	assert.EqualValues(t, 1, learners)
	assert.EqualValues(t, 2, mentors)
}
