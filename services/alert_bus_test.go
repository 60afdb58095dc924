package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbowman189/vitruvian/models"
)

func TestCheckInUpsertEmitsAlert(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "alerted@example.com")

	prev := _alert
	InitAlertDeps(db, nil)
	t.Cleanup(func() { _alert = prev })

	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	_, err := UpsertCheckIn(user.ID, day, 185.0, 0)
	require.NoError(t, err)

	alerts, err := ListAlerts(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "checkin", alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "2026-03-10")
}

func TestEmitAlertBeforeInitIsNoop(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "noop@example.com")

	prev := _alert
	_alert = alertDeps{}
	t.Cleanup(func() { _alert = prev })

	EmitAlert(user.ID, "info", "dropped on the floor")

	var count int64
	require.NoError(t, db.Model(&models.Alert{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListAlertsNewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, "limits@example.com")
	other := newTestUser(t, "other@example.com")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Alert{
			UserID:    user.ID,
			Type:      "info",
			Message:   "alert " + string(rune('a'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	require.NoError(t, db.Create(&models.Alert{
		UserID: other.ID, Type: "info", Message: "not yours", CreatedAt: base,
	}).Error)

	alerts, err := ListAlerts(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "alert c", alerts[0].Message)
	assert.Equal(t, "alert b", alerts[1].Message)
}
