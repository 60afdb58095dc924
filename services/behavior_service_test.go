package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBehaviorLogUniquePerDay(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "habit@example.com")

	def, err := CreateBehavior(user.ID, "stretch", "10 minutes after waking")
	require.NoError(t, err)

	day := time.Date(2026, 4, 2, 9, 0, 0, 0, time.Local)

	first, err := UpsertBehaviorLog(user.ID, def.ID, day, true)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	// Unchecking the same day updates the existing row.
	second, err := UpsertBehaviorLog(user.ID, def.ID, day.Add(5*time.Hour), false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Completed)
}

func TestUpsertBehaviorLogRejectsForeignBehavior(t *testing.T) {
	newTestDB(t)
	alice := newTestUser(t, "alice@example.com")
	bob := newTestUser(t, "bob@example.com")

	def, err := CreateBehavior(alice.ID, "walk", "")
	require.NoError(t, err)

	_, err = UpsertBehaviorLog(bob.ID, def.ID, time.Now(), true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetBehaviorDayDefaultsToIncomplete(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "day@example.com")

	stretch, err := CreateBehavior(user.ID, "stretch", "")
	require.NoError(t, err)
	_, err = CreateBehavior(user.ID, "meditate", "")
	require.NoError(t, err)

	day := time.Date(2026, 4, 3, 0, 0, 0, 0, time.Local)
	_, err = UpsertBehaviorLog(user.ID, stretch.ID, day, true)
	require.NoError(t, err)

	view, err := GetBehaviorDay(user.ID, day)
	require.NoError(t, err)
	require.Len(t, view, 2)

	byName := map[string]bool{}
	for _, b := range view {
		byName[b.Behavior.Name] = b.Completed
	}
	assert.True(t, byName["stretch"])
	assert.False(t, byName["meditate"])
}

func TestGetBehaviorStatsStreak(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "streak@example.com")

	def, err := CreateBehavior(user.ID, "stretch", "")
	require.NoError(t, err)

	today := time.Now()
	// Completed the last three days, gap before that.
	for i := 0; i < 3; i++ {
		_, err := UpsertBehaviorLog(user.ID, def.ID, today.AddDate(0, 0, -i), true)
		require.NoError(t, err)
	}
	_, err = UpsertBehaviorLog(user.ID, def.ID, today.AddDate(0, 0, -5), true)
	require.NoError(t, err)

	stats, err := GetBehaviorStats(user.ID, 30)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, 3, stats[0].CurrentStreak)
	assert.Equal(t, 4, stats[0].DaysCompleted)
	assert.InDelta(t, 4.0/30.0, stats[0].Rate, 0.001)
}

func TestGetBehaviorStatsStreakSurvivesMissingToday(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "streak2@example.com")

	def, err := CreateBehavior(user.ID, "walk", "")
	require.NoError(t, err)

	today := time.Now()
	// Yesterday and the day before, nothing yet today.
	for i := 1; i <= 2; i++ {
		_, err := UpsertBehaviorLog(user.ID, def.ID, today.AddDate(0, 0, -i), true)
		require.NoError(t, err)
	}

	stats, err := GetBehaviorStats(user.ID, 30)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].CurrentStreak)
}

func TestSetBehaviorActive(t *testing.T) {
	newTestDB(t)
	user := newTestUser(t, "archive@example.com")

	def, err := CreateBehavior(user.ID, "stretch", "")
	require.NoError(t, err)

	require.NoError(t, SetBehaviorActive(user.ID, def.ID, false))

	active, err := ListBehaviors(user.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := ListBehaviors(user.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, SetBehaviorActive(user.ID, 9999, false), gorm.ErrRecordNotFound)
}
