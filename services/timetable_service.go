package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/utils/cache"
	"gorm.io/gorm"
)

// slotMatchTTL bounds how long a memoized session-to-slot correlation
// lives. A day is enough: the correlation is keyed on the session date.
const slotMatchTTL = 24 * time.Hour

// TimetableService answers timetable queries and computes the soft
// correlation between a session and the slot it was presumably started
// from. The correlation is matched by subject and start time on the
// session's weekday, never stored as a foreign key: sessions exist
// without templates and templates without sessions.
type TimetableService struct {
	db    *gorm.DB
	cache *cache.RedisCache // optional; nil disables memoization
}

// NewTimetableService creates a new timetable service
func NewTimetableService(db *gorm.DB, redisCache *cache.RedisCache) *TimetableService {
	return &TimetableService{db: db, cache: redisCache}
}

// SlotsForDay returns a weekday's slots ordered by start time.
func (s *TimetableService) SlotsForDay(ctx context.Context, dayOfWeek int) ([]model.TimetableSlot, error) {
	var slots []model.TimetableSlot
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("day_of_week = ?", dayOfWeek).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// SlotsForTeacher returns a teacher's weekly template ordered by day and
// start time.
func (s *TimetableService) SlotsForTeacher(ctx context.Context, teacherID uint) ([]model.TimetableSlot, error) {
	var slots []model.TimetableSlot
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("teacher_id = ?", teacherID).
		Order("day_of_week ASC, start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// slotMatch is the cached correlation payload. Found distinguishes a
// memoized "no match" from a cache miss.
type slotMatch struct {
	Found  bool `json:"found"`
	SlotID uint `json:"slot_id"`
}

// CorrelateSession finds the timetable slot a session most plausibly
// derives from: same subject, same start time, on the session date's
// weekday. Returns nil without error when no slot matches. The result is
// memoized per (subject, date, start time) to avoid recomputing the match
// for every dashboard render of the same day.
func (s *TimetableService) CorrelateSession(ctx context.Context, session *model.AttendanceSession) (*model.TimetableSlot, error) {
	if session.StartTime == "" {
		return nil, nil
	}

	key := fmt.Sprintf("slotmatch:%d:%s:%s",
		session.SubjectID, session.Date.Format("2006-01-02"), session.StartTime)

	if s.cache != nil {
		var cached slotMatch
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			if !cached.Found {
				return nil, nil
			}
			var slot model.TimetableSlot
			if err := s.db.WithContext(ctx).First(&slot, cached.SlotID).Error; err == nil {
				return &slot, nil
			}
		}
	}

	var slot model.TimetableSlot
	err := s.db.WithContext(ctx).
		Where("subject_id = ? AND day_of_week = ? AND start_time = ?",
			session.SubjectID, int(session.Date.Weekday()), session.StartTime).
		First(&slot).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			if s.cache != nil {
				_ = s.cache.SetJSON(ctx, key, slotMatch{Found: false}, slotMatchTTL)
			}
			return nil, nil
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, slotMatch{Found: true, SlotID: slot.ID}, slotMatchTTL)
	}
	return &slot, nil
}
