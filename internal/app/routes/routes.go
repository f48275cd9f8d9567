package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/academia/internal/app/controllers"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Auth       *controllers.AuthController
	Students   *controllers.StudentController
	Courses    *controllers.CourseController
	Professors *controllers.ProfessorController
}

// SetupRouter configures all application routes. Reads are public; every
// mutating route requires a bearer token and deletes require the ADMIN role.
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	middleware.RegisterValidators()

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
	}

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	students := v1.Group("/students")
	{
		students.GET("", c.Students.ListStudents)
		students.GET("/:id", c.Students.GetStudentByID)
		students.GET("/enrollment-number/:number", c.Students.GetStudentByEnrollmentNumber)
		students.GET("/:id/courses", c.Students.GetStudentCourses)

		protected := students.Group("", authMiddleware.JWTAuth())
		{
			protected.POST("", c.Students.CreateStudent)
			protected.PUT("/:id", c.Students.UpdateStudent)
			protected.POST("/:id/deactivate", c.Students.DeactivateStudent)
			protected.GET("/:id/lock", c.Students.GetStudentWithLock)
			protected.POST("/:id/enrollments", c.Students.Enroll)
			protected.DELETE("/:id/enrollments/:courseId", c.Students.Unenroll)
		}
	}

	courses := v1.Group("/courses")
	{
		courses.GET("", c.Courses.GetAllCourses)
		courses.GET("/cycle-check", c.Courses.CheckCycle)
		courses.GET("/:id", c.Courses.GetCourseByID)
		courses.GET("/:id/prerequisites", c.Courses.GetPrerequisites)

		protected := courses.Group("", authMiddleware.JWTAuth())
		{
			protected.POST("", c.Courses.CreateCourse)
			protected.PUT("/:id", c.Courses.UpdateCourse)
			protected.DELETE("/:id", adminOnly, c.Courses.DeleteCourse)
			protected.PUT("/:id/professor", c.Courses.AssignProfessor)
			protected.POST("/:id/prerequisites/:prerequisiteId", c.Courses.AddPrerequisite)
			protected.DELETE("/:id/prerequisites/:prerequisiteId", c.Courses.RemovePrerequisite)
		}
	}

	professors := v1.Group("/professors")
	{
		professors.GET("", c.Professors.GetAllProfessors)
		professors.GET("/:id", c.Professors.GetProfessorByID)

		protected := professors.Group("", authMiddleware.JWTAuth())
		{
			protected.POST("", c.Professors.CreateProfessor)
			protected.PUT("/:id", c.Professors.UpdateProfessor)
			protected.DELETE("/:id", adminOnly, c.Professors.DeleteProfessor)
		}
	}
}
