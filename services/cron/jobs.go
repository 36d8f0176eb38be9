package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sahilchouksey/attendance-api/model"
)

// MaterializeTodaySessions turns today's timetable slots into scheduled
// attendance sessions. A slot is skipped when its teacher is unset or a
// session for the same subject, date and start time already exists, so
// the job is safe to re-run.
func (m *CronManager) MaterializeTodaySessions() {
	jobName := "materialize_sessions"

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(now.Weekday())

	var slots []model.TimetableSlot
	if err := m.db.Where("day_of_week = ?", weekday).Find(&slots).Error; err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query slots: %w", err))
		return
	}

	created := 0
	skipped := 0
	for _, slot := range slots {
		if slot.TeacherID == nil {
			skipped++
			continue
		}

		var count int64
		err := m.db.Model(&model.AttendanceSession{}).
			Where("subject_id = ? AND date = ? AND start_time = ?", slot.SubjectID, today, slot.StartTime).
			Count(&count).Error
		if err != nil {
			m.logJobError(jobName, fmt.Errorf("failed to check existing session: %w", err))
			return
		}
		if count > 0 {
			skipped++
			continue
		}

		session := model.AttendanceSession{
			SubjectID: slot.SubjectID,
			TeacherID: *slot.TeacherID,
			Date:      today,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Room:      slot.Room,
			Section:   slot.Section,
			Batch:     slot.Batch,
			Status:    model.SessionScheduled,
		}
		if err := m.db.Create(&session).Error; err != nil {
			log.Printf("[CRON] Failed to materialize session for slot %d: %v", slot.ID, err)
			continue
		}
		created++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Created %d sessions, skipped %d", created, skipped))
}

// LowAttendanceSweep raises notifications for students below the
// configured threshold.
func (m *CronManager) LowAttendanceSweep() {
	jobName := "low_attendance_sweep"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	created, err := m.notifications.SweepLowAttendance(ctx, m.threshold)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Created %d notifications", created))
}

// CleanupTokenBlacklist purges expired revoked tokens.
func (m *CronManager) CleanupTokenBlacklist() {
	jobName := "cleanup_token_blacklist"

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired tokens", removed))
}

// CloseStaleSessions completes sessions still active a day after their
// date. Marking a session completes it in the normal flow; this catches
// the ones a teacher started and forgot.
func (m *CronManager) CloseStaleSessions() {
	jobName := "close_stale_sessions"

	cutoff := time.Now().Add(-24 * time.Hour)
	result := m.db.Model(&model.AttendanceSession{}).
		Where("status = ? AND date < ?", model.SessionActive, cutoff).
		Update("status", model.SessionCompleted)
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Completed %d stale sessions", result.RowsAffected))
}
