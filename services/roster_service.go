package services

import (
	"context"

	"github.com/sahilchouksey/attendance-api/model"
	"gorm.io/gorm"
)

// RosterTier identifies which fallback tier produced a roster. The tier is
// returned to the caller so the UI can surface imprecise scoping instead
// of hiding it.
type RosterTier string

const (
	TierStrict  RosterTier = "strict"
	TierRelaxed RosterTier = "relaxed"
	TierWide    RosterTier = "wide"
	TierNone    RosterTier = "none"
)

// RosterScope is the scoping data available for a session: the subject's
// department and semester plus the session's section/batch.
type RosterScope struct {
	DepartmentID *uint
	Semester     int
	Section      string
	Batch        string
}

// rosterFilter is one tier's student filter. Zero values mean "don't
// filter on this column".
type rosterFilter struct {
	Tier         RosterTier
	DepartmentID *uint
	Semester     int
	Section      string
	Batch        string
}

// RosterResult is the resolved attendance sheet for a session.
type RosterResult struct {
	Students []model.Student `json:"students"`
	Tier     RosterTier      `json:"tier"`
	// InsufficientScope is set when the subject has no department and the
	// narrower tiers matched nobody: the wide tier is disallowed without a
	// department, so the empty roster means "missing scoping data", not
	// "empty class".
	InsufficientScope bool `json:"insufficient_scope"`
}

// studentFinder runs one tier's filter and returns matching students
// ordered by roll number.
type studentFinder func(rosterFilter) ([]model.Student, error)

// RosterService determines which students belong on a session's
// attendance sheet.
type RosterService struct {
	db *gorm.DB
}

// NewRosterService creates a new roster service
func NewRosterService(db *gorm.DB) *RosterService {
	return &RosterService{db: db}
}

// rosterTiers builds the ordered fallback filters for a scope. Tiers that
// would repeat the previous filter are skipped, and the wide tier is only
// offered when the department is known.
func rosterTiers(scope RosterScope) []rosterFilter {
	tiers := []rosterFilter{}

	strict := rosterFilter{
		Tier:         TierStrict,
		DepartmentID: scope.DepartmentID,
		Semester:     scope.Semester,
		Section:      scope.Section,
		Batch:        scope.Batch,
	}
	tiers = append(tiers, strict)

	if scope.Section != "" || scope.Batch != "" {
		tiers = append(tiers, rosterFilter{
			Tier:         TierRelaxed,
			DepartmentID: scope.DepartmentID,
			Semester:     scope.Semester,
		})
	}

	if scope.DepartmentID != nil && scope.Semester != 0 {
		tiers = append(tiers, rosterFilter{
			Tier:         TierWide,
			DepartmentID: scope.DepartmentID,
		})
	}

	return tiers
}

// resolveWith evaluates the tiers in order, short-circuiting on the first
// non-empty result.
func resolveWith(find studentFinder, scope RosterScope) (*RosterResult, error) {
	for _, tier := range rosterTiers(scope) {
		students, err := find(tier)
		if err != nil {
			return nil, err
		}
		if len(students) > 0 {
			return &RosterResult{Students: students, Tier: tier.Tier}, nil
		}
	}

	return &RosterResult{
		Students:          []model.Student{},
		Tier:              TierNone,
		InsufficientScope: scope.DepartmentID == nil,
	}, nil
}

// Resolve returns the ordered list of students who should appear on the
// attendance sheet for a session, together with the tier that produced it.
func (s *RosterService) Resolve(ctx context.Context, session *model.AttendanceSession, subject *model.Subject) (*RosterResult, error) {
	scope := RosterScope{
		DepartmentID: subject.DepartmentID,
		Semester:     subject.Semester,
		Section:      session.Section,
		Batch:        session.Batch,
	}

	return resolveWith(s.finder(ctx), scope)
}

func (s *RosterService) finder(ctx context.Context) studentFinder {
	return func(f rosterFilter) ([]model.Student, error) {
		query := s.db.WithContext(ctx).Model(&model.Student{}).Preload("User")

		if f.DepartmentID != nil {
			query = query.Where("department_id = ?", *f.DepartmentID)
		}
		if f.Semester != 0 {
			query = query.Where("semester = ?", f.Semester)
		}
		if f.Section != "" {
			query = query.Where("section = ?", f.Section)
		}
		if f.Batch != "" {
			query = query.Where("batch = ?", f.Batch)
		}

		var students []model.Student
		if err := query.Order("roll_number ASC").Find(&students).Error; err != nil {
			return nil, err
		}
		return students, nil
	}
}
