package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/studentdir/internal/app/models/dto"
	"github.com/yigit/studentdir/internal/app/services"
	"github.com/yigit/studentdir/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	enrollmentService services.EnrollmentService
	logger            zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(enrollmentService services.EnrollmentService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// Login handles student login
// @Summary Student login
// @Description Checks credentials and returns the student's profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	profile, err := c.enrollmentService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}
