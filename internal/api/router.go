package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"go-occurrence-assess/internal/api/handler"
	"go-occurrence-assess/pkg/router"
)

func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/assessments", handler.CreateAssessment)
	r.GET("/api/v1/assessments", handler.ListAssessments)
	// More specific routes first
	r.GET("/api/v1/assessments/*/errors", handler.GetAssessmentErrors)
	r.GET("/api/v1/assessments/*/results", handler.GetAssessmentResults)
	r.GET("/api/v1/assessments/*/logs", handler.GetAssessmentLogs)
	r.GET("/api/v1/assessments/*/progress", handler.GetAssessmentProgress)
	r.GET("/api/v1/assessments/*/summary", handler.GetAssessmentSummary)
	r.GET("/api/v1/download/*/*", handler.DownloadOutput)
	// Generic assessment route last
	r.GET("/api/v1/assessments/*", handler.GetAssessment)

	r.Handle("/swagger/", httpSwagger.WrapHandler)
}
