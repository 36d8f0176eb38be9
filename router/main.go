package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/config"
	"github.com/sahilchouksey/attendance-api/database"
	"github.com/sahilchouksey/attendance-api/handlers"
	advisor_handlers "github.com/sahilchouksey/attendance-api/handlers/advisor"
	allocation_handlers "github.com/sahilchouksey/attendance-api/handlers/allocation"
	auth_handlers "github.com/sahilchouksey/attendance-api/handlers/auth"
	department_handlers "github.com/sahilchouksey/attendance-api/handlers/department"
	import_handlers "github.com/sahilchouksey/attendance-api/handlers/imports"
	notification_handlers "github.com/sahilchouksey/attendance-api/handlers/notification"
	report_handlers "github.com/sahilchouksey/attendance-api/handlers/report"
	session_handlers "github.com/sahilchouksey/attendance-api/handlers/session"
	student_handlers "github.com/sahilchouksey/attendance-api/handlers/student"
	subject_handlers "github.com/sahilchouksey/attendance-api/handlers/subject"
	teacher_handlers "github.com/sahilchouksey/attendance-api/handlers/teacher"
	timetable_handlers "github.com/sahilchouksey/attendance-api/handlers/timetable"
	user_handlers "github.com/sahilchouksey/attendance-api/handlers/user"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/services/spaces"
	"github.com/sahilchouksey/attendance-api/utils"
	"github.com/sahilchouksey/attendance-api/utils/auth"
	"github.com/sahilchouksey/attendance-api/utils/cache"
	"github.com/sahilchouksey/attendance-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "attendance-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment configuration")
	}
	threshold := getEnv.DEFAULTER_THRESHOLD

	// Initialize Redis cache for brute force protection and timetable
	// correlation memoization
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize domain services
	rosterService := services.NewRosterService(db)
	aggregationService := services.NewAggregationService(db)
	sessionService := services.NewSessionService(db, rosterService)
	conflictService := services.NewConflictService(db)
	timetableService := services.NewTimetableService(db, redisCache)
	csvService := services.NewCSVService(db)
	notificationService := services.NewNotificationService(db, aggregationService)

	// Spaces report archiving is optional
	spacesClient, err := spaces.NewFromEnv()
	if err != nil {
		log.Printf("Warning: Failed to initialize Spaces client: %v. Report archiving will be disabled.", err)
		spacesClient = nil
	}

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	departmentHandler := department_handlers.NewDepartmentHandler(db)
	subjectHandler := subject_handlers.NewSubjectHandler(db)
	userHandler := user_handlers.NewUserHandler(db)
	teacherHandler := teacher_handlers.NewTeacherHandler(db, timetableService)
	studentHandler := student_handlers.NewStudentHandler(db, aggregationService, threshold)
	allocationHandler := allocation_handlers.NewAllocationHandler(db, getEnv.ACADEMIC_YEAR)
	advisorHandler := advisor_handlers.NewAdvisorHandler(db, aggregationService, threshold)
	timetableHandler := timetable_handlers.NewTimetableHandler(db, conflictService, timetableService)
	sessionHandler := session_handlers.NewSessionHandler(db, sessionService, rosterService, timetableService)
	reportHandler := report_handlers.NewReportHandler(db, aggregationService, spacesClient, threshold)
	importHandler := import_handlers.NewImportHandler(csvService)
	notificationHandler := notification_handlers.NewNotificationHandler(notificationService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Role sets per route group
	staff := authMiddleware.RequireRoles(model.RoleAdmin, model.RoleTeacher, model.RoleAdvisor)
	adminOnly := authMiddleware.RequireRoles(model.RoleAdmin)
	advisorOnly := authMiddleware.RequireRoles(model.RoleAdvisor, model.RoleAdmin)
	studentOnly := authMiddleware.RequireRoles(model.RoleStudent)

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Departments: read for any authenticated user, writes admin only
	departments := api.Group("/departments", authMiddleware.Required())
	departments.Get("/", departmentHandler.ListDepartments)
	departments.Get("/:id", departmentHandler.GetDepartment)

	// Subjects: read for any authenticated user
	subjects := api.Group("/subjects", authMiddleware.Required())
	subjects.Get("/", subjectHandler.ListSubjects)
	subjects.Get("/:id", subjectHandler.GetSubject)

	// Admin routes
	admin := api.Group("/admin", authMiddleware.Required(), adminOnly)

	admin.Post("/departments", departmentHandler.CreateDepartment)
	admin.Put("/departments/:id", departmentHandler.UpdateDepartment)
	admin.Delete("/departments/:id", departmentHandler.DeleteDepartment)

	admin.Post("/subjects", subjectHandler.CreateSubject)
	admin.Put("/subjects/:id", subjectHandler.UpdateSubject)
	admin.Delete("/subjects/:id", subjectHandler.DeleteSubject)

	admin.Get("/users", userHandler.ListUsers)
	admin.Get("/users/:id", userHandler.GetUser)
	admin.Post("/users", userHandler.CreateStaff)
	admin.Patch("/users/:id/role", userHandler.UpdateRole)

	admin.Get("/teachers", teacherHandler.ListTeachers)
	admin.Get("/teachers/:id", teacherHandler.GetTeacher)
	admin.Put("/teachers/:id", teacherHandler.UpdateTeacher)

	admin.Get("/students", studentHandler.ListStudents)
	admin.Get("/students/:id", studentHandler.GetStudent)
	admin.Post("/students", studentHandler.CreateStudent)
	admin.Put("/students/:id", studentHandler.UpdateStudent)
	admin.Delete("/students/:id", studentHandler.DeleteStudent)

	admin.Get("/allocations", allocationHandler.ListAllocations)
	admin.Post("/allocations", allocationHandler.CreateAllocation)
	admin.Delete("/allocations/:id", allocationHandler.DeleteAllocation)

	admin.Get("/advisors", advisorHandler.ListAdvisors)
	admin.Put("/advisors", advisorHandler.AssignAdvisor)
	admin.Delete("/advisors/:id", advisorHandler.RemoveAdvisor)

	admin.Post("/imports/students", importHandler.ImportStudents)
	admin.Post("/imports/subjects", importHandler.ImportSubjects)

	// Timetable: any authenticated user can read, admins and advisors write
	timetable := api.Group("/timetable", authMiddleware.Required())
	timetable.Get("/slots", timetableHandler.ListSlots)
	timetable.Get("/slots/:id", timetableHandler.GetSlot)
	timetable.Get("/day/:day", timetableHandler.GetDaySchedule)
	timetable.Post("/slots", advisorOnly, timetableHandler.CreateSlot)
	timetable.Put("/slots/:id", advisorOnly, timetableHandler.UpdateSlot)
	timetable.Delete("/slots/:id", advisorOnly, timetableHandler.DeleteSlot)

	// Teacher routes: advisors keep their teaching duties, admins can act
	// on any teacher's behalf
	teacher := api.Group("/teacher", authMiddleware.Required(), staff)
	teacher.Get("/me", teacherHandler.GetMyProfile)
	teacher.Get("/timetable", teacherHandler.GetMyTimetable)
	teacher.Get("/allocations", teacherHandler.GetMyAllocations)
	teacher.Get("/sessions", sessionHandler.ListMySessions)
	teacher.Post("/sessions", sessionHandler.CreateSession)
	teacher.Get("/sessions/:id", sessionHandler.GetSession)
	teacher.Post("/sessions/:id/start", sessionHandler.StartSession)
	teacher.Post("/sessions/:id/cancel", sessionHandler.CancelSession)
	teacher.Post("/sessions/:id/complete", sessionHandler.CompleteSession)
	teacher.Get("/sessions/:id/roster", sessionHandler.GetRoster)
	teacher.Post("/sessions/:id/attendance", sessionHandler.MarkAttendance)

	// Advisor routes
	advisor := api.Group("/advisor", authMiddleware.Required(), advisorOnly)
	advisor.Get("/cohort", advisorHandler.GetMyCohort)
	advisor.Get("/defaulters", advisorHandler.GetMyDefaulters)
	advisor.Get("/students/:id", advisorHandler.GetStudentDetail)
	advisor.Post("/notes", advisorHandler.CreateNote)

	// Student routes
	student := api.Group("/student", authMiddleware.Required(), studentOnly)
	student.Get("/dashboard", studentHandler.GetMyDashboard)
	student.Get("/records", studentHandler.GetMyRecords)

	// Reports: staff only
	reports := api.Group("/reports", authMiddleware.Required(), staff)
	reports.Get("/defaulters", reportHandler.GetDefaulters)
	reports.Get("/matrix", reportHandler.GetMatrix)
	reports.Get("/health", reportHandler.GetCohortHealth)
	reports.Get("/subjects/:id", reportHandler.GetSubjectReport)
	reports.Get("/archive/:kind", adminOnly, reportHandler.ListArchived)

	// Notifications: any authenticated user
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
}
