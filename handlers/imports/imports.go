package imports

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/utils/response"
)

// maxImportSize caps uploaded CSV files at 5 MB.
const maxImportSize = 5 << 20

// ImportHandler handles bulk CSV imports
type ImportHandler struct {
	csvService *services.CSVService
}

// NewImportHandler creates a new import handler
func NewImportHandler(csvService *services.CSVService) *ImportHandler {
	return &ImportHandler{csvService: csvService}
}

// openUpload pulls the "file" part from the multipart form.
func openUpload(c *fiber.Ctx) (multipart.File, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("CSV file is required (multipart field \"file\")")
	}
	if fileHeader.Size > maxImportSize {
		return nil, errors.New("File exceeds the 5 MB limit")
	}
	return fileHeader.Open()
}

// ImportStudents handles POST /api/v1/admin/imports/students
func (h *ImportHandler) ImportStudents(c *fiber.Ctx) error {
	file, err := openUpload(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	defer file.Close()

	result, err := h.csvService.ImportStudents(c.Context(), file)
	if err != nil {
		if errors.Is(err, services.ErrMissingHeader) || errors.Is(err, services.ErrEmptyCSV) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to import students")
	}

	return response.Success(c, result)
}

// ImportSubjects handles POST /api/v1/admin/imports/subjects
func (h *ImportHandler) ImportSubjects(c *fiber.Ctx) error {
	file, err := openUpload(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	defer file.Close()

	result, err := h.csvService.ImportSubjects(c.Context(), file)
	if err != nil {
		if errors.Is(err, services.ErrMissingHeader) || errors.Is(err, services.ErrEmptyCSV) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to import subjects")
	}

	return response.Success(c, result)
}
