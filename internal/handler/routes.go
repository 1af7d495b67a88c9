package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/twoschool/twoschool-api/internal/middleware"
	"github.com/twoschool/twoschool-api/internal/service"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Classes *ClassHandler
	Subject *SubjectHandler
	Items   *ItemHandler
	Grades  *GradeHandler
	Health  *HealthHandler
}

// Register mounts every route. Login, health and metrics are public; the
// swagger UI is mounted only when docsEnabled is set, which production
// deployments leave off. Everything else sits behind token verification and
// the role gate.
func Register(router *gin.Engine, h Handlers, authService *service.AuthService, metricsSvc *service.MetricsService, permissions middleware.PermissionTable, docsEnabled bool) {
	router.GET("/", h.Health.Check)
	router.POST("/login", h.Auth.Login)
	if docsEnabled {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	router.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	protected := router.Group("/")
	protected.Use(middleware.Auth(authService), middleware.Gate(permissions))
	{
		protected.POST("/signup", h.Users.Signup)
		protected.GET("/getUser/:id", h.Users.Get)
		protected.PATCH("/modifyUser/:id", h.Users.Modify)
		protected.DELETE("/deleteUser/:id", h.Users.Delete)
		protected.GET("/getAllUsers", h.Users.ListAll)

		protected.GET("/getClasses/:userId", h.Classes.List)
		protected.GET("/getClass/:id", h.Classes.Get)
		protected.POST("/createClass", h.Classes.Create)
		protected.PUT("/addUserToClass", h.Classes.AddUser)
		protected.GET("/exportClass/:id", h.Classes.Export)

		protected.POST("/createSubject", h.Subject.Create)
		protected.GET("/getSubjects", h.Subject.List)
		protected.PUT("/addSubjectToTeacher", h.Subject.AssignToTeacher)

		protected.POST("/addHomeworkToClass", h.Items.AddHomework)
		protected.GET("/getHomeworks/:classId", h.Items.ListHomework)
		protected.POST("/addReport/:classId", h.Items.AddReport)
		protected.GET("/getReports/:classId", h.Items.ListReports)
		protected.PATCH("/modifyItem", h.Items.Modify)
		protected.DELETE("/deleteItem", h.Items.Delete)

		protected.POST("/addGrade", h.Grades.Add)
		protected.GET("/getGrades/:studentId", h.Grades.List)
	}
}
