package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/yigit/studentdir/internal/app/controllers"
	"github.com/yigit/studentdir/internal/app/models/dto"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	studentController *controllers.StudentController,
	authController *controllers.AuthController,
	healthController *controllers.HealthController,
) {
	if err := dto.RegisterValidations(); err != nil {
		log.Error().Err(err).Msg("Failed to register binding validations")
	}

	router.GET("/", healthController.Hello)
	router.GET("/health", healthController.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/login", authController.Login)

	students := router.Group("/students")
	{
		students.POST("", studentController.Register)
		students.GET("", studentController.ListStudents)
		students.POST("/:username/matric", studentController.AssignMatriculation)
		students.GET("/matric/:matric_number", studentController.GetByMatricNumber)
	}
}
