// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/studentdir/internal/app/models/dto"
	"github.com/yigit/studentdir/internal/app/services"
	"github.com/yigit/studentdir/internal/middleware"
)

// StudentController handles student registration, listing and matriculation
type StudentController struct {
	enrollmentService services.EnrollmentService
	logger            zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(enrollmentService services.EnrollmentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// Register handles student registration
// @Summary Register a new student
// @Description Creates an unmatriculated student account
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.RegisterStudentRequest true "Student registration information"
// @Success 201 {object} dto.APIResponse{data=models.StudentProfile} "Student registered"
// @Failure 400 {object} dto.APIResponse "Invalid request format or validation error"
// @Failure 409 {object} dto.APIResponse "Username already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) Register(ctx *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	profile, err := c.enrollmentService.Register(ctx.Request.Context(), req.Username, req.Password, req.Name)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Failed to register student")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(profile))
}

// ListStudents returns every registered student
// @Summary List students
// @Tags students
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.StudentProfile}
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	profiles, err := c.enrollmentService.ListStudents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profiles))
}

// AssignMatriculation assigns the next matriculation number to a student
// @Summary Assign matriculation number
// @Tags students
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile}
// @Failure 400 {object} dto.APIResponse "Student not found or already has matric number"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /students/{username}/matric [post]
func (c *StudentController) AssignMatriculation(ctx *gin.Context) {
	var params dto.UsernamePathParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	profile, err := c.enrollmentService.AssignMatriculation(ctx.Request.Context(), params.Username)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", params.Username).Msg("Failed to assign matric number")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// GetByMatricNumber looks a student up by matriculation number
// @Summary Get student by matriculation number
// @Tags students
// @Produce json
// @Param matric_number path string true "Matriculation number"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile}
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /students/matric/{matric_number} [get]
func (c *StudentController) GetByMatricNumber(ctx *gin.Context) {
	var params dto.MatricPathParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	profile, err := c.enrollmentService.GetByMatricNumber(ctx.Request.Context(), params.MatricNumber)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}
