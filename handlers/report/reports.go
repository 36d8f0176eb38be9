package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/services/spaces"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"gorm.io/gorm"
)

// ReportHandler handles aggregate report requests. When a Spaces client
// is configured, CSV exports can additionally be archived.
type ReportHandler struct {
	db          *gorm.DB
	aggregation *services.AggregationService
	spaces      *spaces.Client
	threshold   int
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *gorm.DB, aggregation *services.AggregationService, spacesClient *spaces.Client, threshold int) *ReportHandler {
	return &ReportHandler{
		db:          db,
		aggregation: aggregation,
		spaces:      spacesClient,
		threshold:   threshold,
	}
}

func parseCohortFilter(c *fiber.Ctx) (services.CohortFilter, error) {
	filter := services.CohortFilter{Section: c.Query("section")}

	if deptID := c.Query("department_id"); deptID != "" {
		parsed, err := strconv.ParseUint(deptID, 10, 32)
		if err != nil {
			return filter, fmt.Errorf("invalid department ID")
		}
		id := uint(parsed)
		filter.DepartmentID = &id
	}
	if semester := c.Query("semester"); semester != "" {
		parsed, err := strconv.Atoi(semester)
		if err != nil || parsed < 1 || parsed > 8 {
			return filter, fmt.Errorf("semester must be between 1 and 8")
		}
		filter.Semester = parsed
	}
	return filter, nil
}

// archive stores a CSV export in Spaces when requested and configured.
// Failures never block the download.
func (h *ReportHandler) archive(c *fiber.Ctx, kind, filename string, data []byte) *string {
	if h.spaces == nil || c.Query("archive") != "true" {
		return nil
	}
	url, err := h.spaces.ArchiveReport(c.Context(), kind, filename, data, "text/csv")
	if err != nil {
		return nil
	}
	return &url
}

func csvFilename(kind string) string {
	return fmt.Sprintf("%s-%s.csv", kind, time.Now().UTC().Format("2006-01-02"))
}

// GetDefaulters handles GET /api/v1/reports/defaulters. Accepts
// format=csv for a download.
func (h *ReportHandler) GetDefaulters(c *fiber.Ctx) error {
	filter, err := parseCohortFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	threshold := h.threshold
	if t := c.Query("threshold"); t != "" {
		parsed, err := strconv.Atoi(t)
		if err != nil || parsed < 1 || parsed > 100 {
			return response.BadRequest(c, "Threshold must be between 1 and 100")
		}
		threshold = parsed
	}

	report, err := h.aggregation.Defaulters(c.Context(), filter, threshold)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute defaulters")
	}

	if c.Query("format") == "csv" {
		data := services.BuildDefaultersCSV(report)
		filename := csvFilename("defaulters")
		if url := h.archive(c, "defaulters", filename, data); url != nil {
			c.Set("X-Archive-URL", *url)
		}
		return response.CSVAttachment(c, filename, data)
	}

	return response.Success(c, report)
}

// GetMatrix handles GET /api/v1/reports/matrix: the student-by-subject
// percentage matrix.
func (h *ReportHandler) GetMatrix(c *fiber.Ctx) error {
	filter, err := parseCohortFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	matrix, err := h.aggregation.Matrix(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to compile matrix")
	}

	if c.Query("format") == "csv" {
		data := services.BuildMatrixCSV(matrix)
		filename := csvFilename("matrix")
		if url := h.archive(c, "matrix", filename, data); url != nil {
			c.Set("X-Archive-URL", *url)
		}
		return response.CSVAttachment(c, filename, data)
	}

	return response.Success(c, matrix)
}

// GetCohortHealth handles GET /api/v1/reports/health
func (h *ReportHandler) GetCohortHealth(c *fiber.Ctx) error {
	filter, err := parseCohortFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	health, err := h.aggregation.Health(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute cohort health")
	}

	return response.Success(c, health)
}

// GetSubjectReport handles GET /api/v1/reports/subjects/:id: per-student
// standings scoped to one subject.
func (h *ReportHandler) GetSubjectReport(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	var subject model.Subject
	if err := h.db.First(&subject, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject")
	}

	standings, err := h.aggregation.SubjectStandings(c.Context(), subject.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute standings")
	}

	if c.Query("format") == "csv" {
		data := services.BuildStandingsCSV(standings)
		filename := csvFilename("subject-" + subject.Code)
		if url := h.archive(c, "subjects", filename, data); url != nil {
			c.Set("X-Archive-URL", *url)
		}
		return response.CSVAttachment(c, filename, data)
	}

	return response.Success(c, fiber.Map{
		"subject":   subject,
		"standings": standings,
	})
}

// ListArchived handles GET /api/v1/reports/archive/:kind
func (h *ReportHandler) ListArchived(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.NotFound(c, "Report archiving is not configured")
	}

	keys, err := h.spaces.ListArchived(c.Context(), c.Params("kind"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list archived reports")
	}

	return response.Success(c, fiber.Map{"keys": keys})
}
