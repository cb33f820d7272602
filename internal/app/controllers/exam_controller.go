package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/prelimplanner/internal/app/models/dto"
	"github.com/yigit/prelimplanner/internal/app/services"
	"github.com/yigit/prelimplanner/internal/middleware"
)

// ExamController handles exam schedule operations
type ExamController struct {
	examService services.ExamService
}

// NewExamController creates a new ExamController
func NewExamController(examService services.ExamService) *ExamController {
	return &ExamController{
		examService: examService,
	}
}

// bindTableQuery reads semester, exam_type and year from the query string.
func bindTableQuery(ctx *gin.Context) (dto.TableQuery, bool) {
	var q dto.TableQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(ctx, err)
		return q, false
	}
	return q, true
}

// CreateExams scrapes and stores a semester's exam schedule
// @Summary Populate an exam table
// @Description Scrapes the registrar schedule for a semester and exam type and loads it into the matching table
// @Tags exams
// @Accept json
// @Produce json
// @Param request body dto.PopulateRequest true "Semester and exam type"
// @Success 200 {object} dto.PopulateResponse "Table populated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown exam type"
// @Failure 422 {object} dto.ErrorResponse "Schedule page could not be parsed"
// @Failure 502 {object} dto.ErrorResponse "Registrar page could not be fetched"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/exams/create [post]
func (c *ExamController) CreateExams(ctx *gin.Context) {
	var req dto.PopulateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	res, err := c.examService.Populate(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

// GetExamsByCourse returns the exams of one course
// @Summary Get exams by course code
// @Tags exams
// @Produce json
// @Param course_code path string true "Course code, e.g. CS 2110"
// @Param semester query string true "Semester"
// @Param exam_type query string true "prelim or final"
// @Param year query string false "Year; defaults to the latest populated table"
// @Success 200 {array} models.ExamRecord
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 404 {object} dto.ErrorResponse "Table not found"
// @Router /courses/exams/{course_code} [get]
func (c *ExamController) GetExamsByCourse(ctx *gin.Context) {
	q, ok := bindTableQuery(ctx)
	if !ok {
		return
	}

	records, err := c.examService.FetchByCode(ctx.Request.Context(), q, ctx.Param("course_code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, records)
}

// GetExamsBatch returns the first exam of each requested course
// @Summary Get exams for several courses
// @Tags exams
// @Accept json
// @Produce json
// @Param request body dto.BatchFetchRequest true "Table and course codes"
// @Success 200 {array} models.ExamRecord
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Table not found"
// @Router /courses/exams/batch [post]
func (c *ExamController) GetExamsBatch(ctx *gin.Context) {
	var req dto.BatchFetchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	records, err := c.examService.FetchMany(ctx.Request.Context(), req.TableQuery, req.CourseCodes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, records)
}

// UpdateExam changes stored exam fields of a course
// @Summary Update a course's exams
// @Tags exams
// @Accept json
// @Produce json
// @Param course_code path string true "Course code"
// @Param request body dto.UpdateExamRequest true "Table and new field values"
// @Success 200 {array} models.ExamRecord "Rows after the update"
// @Failure 400 {object} dto.ErrorResponse "Invalid field or value"
// @Failure 404 {object} dto.ErrorResponse "Table or course not found"
// @Router /courses/exams/update/{course_code} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	var req dto.UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	records, err := c.examService.Update(ctx.Request.Context(), req.TableQuery, ctx.Param("course_code"), req.NewExamData)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, records)
}

// DeleteExam removes a course's exams
// @Summary Delete a course's exams
// @Description Deleting a course that has no rows succeeds with deleted=0
// @Tags exams
// @Produce json
// @Param course_code path string true "Course code"
// @Param semester query string true "Semester"
// @Param exam_type query string true "prelim or final"
// @Param year query string false "Year"
// @Success 200 {object} dto.DeleteResponse
// @Failure 404 {object} dto.ErrorResponse "Table not found"
// @Router /exams/delete/{course_code} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	q, ok := bindTableQuery(ctx)
	if !ok {
		return
	}

	res, err := c.examService.Delete(ctx.Request.Context(), q, ctx.Param("course_code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

// DeleteAllExams empties a table
// @Summary Delete every exam of a table
// @Tags exams
// @Produce json
// @Param semester query string true "Semester"
// @Param exam_type query string true "prelim or final"
// @Param year query string false "Year"
// @Success 200 {object} dto.DeleteResponse
// @Failure 404 {object} dto.ErrorResponse "Table not found"
// @Router /courses/exams [delete]
func (c *ExamController) DeleteAllExams(ctx *gin.Context) {
	q, ok := bindTableQuery(ctx)
	if !ok {
		return
	}

	res, err := c.examService.DeleteAll(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

// ListCourses returns the course codes of a table
// @Summary List course codes
// @Tags courses
// @Produce json
// @Param semester query string true "Semester"
// @Param exam_type query string true "prelim or final"
// @Param year query string false "Year"
// @Success 200 {array} string
// @Failure 404 {object} dto.ErrorResponse "Table not found"
// @Router /courses [get]
func (c *ExamController) ListCourses(ctx *gin.Context) {
	q, ok := bindTableQuery(ctx)
	if !ok {
		return
	}

	courses, err := c.examService.ListCourses(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, courses)
}

// ListTables returns the catalog of populated tables
// @Summary List exam tables
// @Tags tables
// @Produce json
// @Success 200 {array} dto.TableResponse
// @Router /courses/exams/tables [get]
func (c *ExamController) ListTables(ctx *gin.Context) {
	tables, err := c.examService.ListTables(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tables)
}

// DropTable removes a table and its catalog entry
// @Summary Drop an exam table
// @Tags tables
// @Produce json
// @Param semester query string true "Semester"
// @Param exam_type query string true "prelim or final"
// @Param year query string false "Year"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse "Table not found"
// @Router /courses/exams/tables [delete]
func (c *ExamController) DropTable(ctx *gin.Context) {
	q, ok := bindTableQuery(ctx)
	if !ok {
		return
	}

	if err := c.examService.DropTable(ctx.Request.Context(), q); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Exam table dropped"})
}
