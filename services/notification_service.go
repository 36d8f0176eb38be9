package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sahilchouksey/attendance-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService manages in-app notifications. Low-attendance alerts
// are fanned out to the advisor of the affected cohort and to the student
// themselves.
type NotificationService struct {
	db          *gorm.DB
	aggregation *AggregationService
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB, aggregation *AggregationService) *NotificationService {
	return &NotificationService{db: db, aggregation: aggregation}
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]model.UserNotification, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []model.UserNotification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one notification as read. Scoped to the owning user.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	result := s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of a user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

// Notify creates a single notification row.
func (s *NotificationService) Notify(ctx context.Context, userID uint, typ model.NotificationType, category model.NotificationCategory, title, message string, metadata interface{}) error {
	notification := model.UserNotification{
		UserID:   userID,
		Type:     typ,
		Category: category,
		Title:    title,
		Message:  message,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		notification.Metadata = datatypes.JSON(raw)
	}
	return s.db.WithContext(ctx).Create(&notification).Error
}

// hasRecentLowAttendanceAlert deduplicates alerts: a student already
// flagged within the last day is not flagged again for the same user.
func (s *NotificationService) hasRecentLowAttendanceAlert(ctx context.Context, userID, studentID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("user_id = ? AND category = ?", userID, model.NotificationCategoryLowAttendance).
		Where("metadata ->> 'student_id' = ?", fmt.Sprint(studentID)).
		Where("created_at > NOW() - INTERVAL '1 day'").
		Count(&count).Error
	return count > 0, err
}

// SweepLowAttendance walks every advisor's cohort and raises alerts for
// students whose rounded percentage sits below the threshold. Returns the
// number of alerts created.
func (s *NotificationService) SweepLowAttendance(ctx context.Context, threshold int) (int, error) {
	var advisors []model.ClassAdvisor
	if err := s.db.WithContext(ctx).Find(&advisors).Error; err != nil {
		return 0, err
	}

	created := 0
	for _, advisor := range advisors {
		filter := CohortFilter{
			DepartmentID: advisor.DepartmentID,
			Semester:     advisor.Semester,
			Section:      advisor.Section,
		}
		report, err := s.aggregation.Defaulters(ctx, filter, threshold)
		if err != nil {
			return created, err
		}

		for _, st := range report.Defaulters {
			exists, err := s.hasRecentLowAttendanceAlert(ctx, advisor.UserID, st.StudentID)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}

			metadata := model.LowAttendanceMetadata{
				StudentID:  st.StudentID,
				RollNumber: st.RollNumber,
				Percentage: *st.Percentage,
				Threshold:  report.Threshold,
				Semester:   st.Semester,
				Section:    st.Section,
			}
			title := fmt.Sprintf("Low attendance: %s", st.RollNumber)
			message := fmt.Sprintf("%s (%s) is at %d%% attendance, below the %d%% threshold.",
				st.FullName, st.RollNumber, *st.Percentage, report.Threshold)

			if err := s.Notify(ctx, advisor.UserID, model.NotificationTypeWarning, model.NotificationCategoryLowAttendance, title, message, metadata); err != nil {
				return created, err
			}
			created++

			// The student gets a copy addressed to their own account.
			var student model.Student
			if err := s.db.WithContext(ctx).First(&student, st.StudentID).Error; err == nil {
				studentMsg := fmt.Sprintf("Your attendance is at %d%%, below the required %d%%.", *st.Percentage, report.Threshold)
				if err := s.Notify(ctx, student.UserID, model.NotificationTypeWarning, model.NotificationCategoryLowAttendance, "Low attendance warning", studentMsg, metadata); err != nil {
					return created, err
				}
				created++
			}
		}
	}

	return created, nil
}
