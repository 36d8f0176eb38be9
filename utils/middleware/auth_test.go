package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
)

// gateStatus runs a request through RequireRoles with the given role
// pre-set, the way Required() would leave it.
func gateStatus(t *testing.T, role string, allowed ...string) int {
	t.Helper()

	app := fiber.New()
	m := &AuthMiddleware{}

	app.Get("/",
		func(c *fiber.Ctx) error {
			if role != "" {
				c.Locals("user_role", role)
			}
			return c.Next()
		},
		m.RequireRoles(allowed...),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode
}

func TestRequireRolesMembership(t *testing.T) {
	if got := gateStatus(t, model.RoleAdmin, model.RoleAdmin); got != fiber.StatusOK {
		t.Errorf("admin against admin gate = %d, want 200", got)
	}
	if got := gateStatus(t, model.RoleTeacher, model.RoleAdmin); got != fiber.StatusForbidden {
		t.Errorf("teacher against admin gate = %d, want 403", got)
	}
	if got := gateStatus(t, "", model.RoleAdmin); got != fiber.StatusForbidden {
		t.Errorf("missing role = %d, want 403", got)
	}
}

func TestRequireRolesTimetableWriteGate(t *testing.T) {
	// slot writes accept both advisors and admins
	gate := []string{model.RoleAdvisor, model.RoleAdmin}

	if got := gateStatus(t, model.RoleAdvisor, gate...); got != fiber.StatusOK {
		t.Errorf("advisor = %d, want 200", got)
	}
	if got := gateStatus(t, model.RoleAdmin, gate...); got != fiber.StatusOK {
		t.Errorf("admin = %d, want 200", got)
	}
	if got := gateStatus(t, model.RoleTeacher, gate...); got != fiber.StatusForbidden {
		t.Errorf("teacher = %d, want 403", got)
	}
	if got := gateStatus(t, model.RoleStudent, gate...); got != fiber.StatusForbidden {
		t.Errorf("student = %d, want 403", got)
	}
}
