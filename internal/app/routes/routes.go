package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/prelimplanner/internal/app/controllers"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	examController *controllers.ExamController,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Course listing
	router.GET("/courses", examController.ListCourses)

	// Exam routes
	exams := router.Group("/courses/exams")
	{
		exams.POST("/create", examController.CreateExams)
		exams.POST("/batch", examController.GetExamsBatch)
		exams.GET("/:course_code", examController.GetExamsByCourse)
		exams.PUT("/update/:course_code", examController.UpdateExam)
		exams.DELETE("", examController.DeleteAllExams)

		// Table catalog
		exams.GET("/tables", examController.ListTables)
		exams.DELETE("/tables", examController.DropTable)
	}

	// Kept at its historical path, outside the /courses group.
	router.DELETE("/exams/delete/:course_code", examController.DeleteExam)
}
