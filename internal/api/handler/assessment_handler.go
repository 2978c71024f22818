package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/internal/pipeline"
	"go-occurrence-assess/internal/store"
	"go-occurrence-assess/pkg/utils"
)

// CreateAssessment creates a new bias-assessment job
// @Summary Create a new assessment
// @Description Create and start a new occurrence bias-assessment job with the provided configuration
// @Tags assessments
// @Accept json
// @Produce json
// @Param assessment body model.AssessmentJobSpec true "Assessment configuration"
// @Success 200 {object} map[string]interface{} "Assessment created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /assessments [post]
func CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var job model.AssessmentJobSpec
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// 1. Validate payload
	if len(job.Sources) == 0 {
		http.Error(w, "At least one source is required", http.StatusBadRequest)
		return
	}
	if len(job.Periods) == 0 {
		http.Error(w, "A period list is required", http.StatusBadRequest)
		return
	}

	// 2. Generate job ID
	jobID := uuid.New().String()

	// 3. Save job to DB
	if err := store.SaveJob(jobID, job); err != nil {
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	// 4. Start assessment asynchronously
	ctx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(job.Concurrency.JobTimeout))

	go func() {
		defer cancel() // Cancel context when the run completes
		if err := pipeline.Run(ctx, jobID, job); err != nil {
			store.SaveJobError(jobID, err)
		}
	}()

	// 5. Return response
	resp := map[string]interface{}{
		"message":   "Assessment created successfully!",
		"jobID":     jobID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListAssessments retrieves all assessment jobs
// @Summary List all assessments
// @Description Get a list of all assessment jobs with their current status
// @Tags assessments
// @Accept json
// @Produce json
// @Success 200 {array} map[string]interface{} "List of assessments"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /assessments [get]
func ListAssessments(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch assessments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// GetAssessment retrieves a specific assessment job
// @Summary Get assessment
// @Description Retrieve details of a specific assessment job
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} map[string]interface{} "Assessment details"
// @Failure 404 {object} map[string]interface{} "Assessment not found"
// @Router /assessments/{id} [get]
func GetAssessment(w http.ResponseWriter, r *http.Request) {
	jobID, ok := extractJobID(w, r)
	if !ok {
		return
	}

	job, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Assessment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// GetAssessmentResults retrieves the summary tables of a finished job
// @Summary Get assessment results
// @Description Retrieve every assessor's summary table for a job
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} model.SummaryTable "Summary tables"
// @Failure 404 {object} map[string]interface{} "Assessment not found"
// @Router /assessments/{id}/results [get]
func GetAssessmentResults(w http.ResponseWriter, r *http.Request) {
	jobID, ok := extractJobID(w, r)
	if !ok {
		return
	}

	tables, err := store.GetAssessmentResults(jobID)
	if err != nil {
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	if tables == nil {
		tables = []model.SummaryTable{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tables)
}

// GetAssessmentErrors retrieves errors recorded for a job
// @Summary Get assessment errors
// @Description Retrieve errors recorded while running a job
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} map[string]interface{} "Recorded errors"
// @Router /assessments/{id}/errors [get]
func GetAssessmentErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := extractJobID(w, r)
	if !ok {
		return
	}

	errors, err := store.GetJobErrors(jobID)
	if err != nil {
		http.Error(w, "Failed to fetch errors", http.StatusInternalServerError)
		return
	}
	if errors == nil {
		errors = []map[string]interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(errors)
}

// GetAssessmentLogs retrieves the structured pipeline logs for a job
// @Summary Get assessment logs
// @Description Retrieve structured stage logs for a job
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param limit query int false "Maximum rows to return"
// @Success 200 {array} map[string]interface{} "Log rows"
// @Router /assessments/{id}/logs [get]
func GetAssessmentLogs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := extractJobID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := store.GetPipelineLogs(jobID, limit)
	if err != nil {
		http.Error(w, "Failed to fetch logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []map[string]interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

// GetAssessmentProgress retrieves per-stage progress for a job
// @Summary Get assessment progress
// @Description Retrieve per-stage progress events for a job
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} map[string]interface{} "Stage progress"
// @Router /assessments/{id}/progress [get]
func GetAssessmentProgress(w http.ResponseWriter, r *http.Request) {
	jobID, ok := extractJobID(w, r)
	if !ok {
		return
	}

	progress, err := store.GetStageProgress(jobID)
	if err != nil {
		http.Error(w, "Failed to fetch progress", http.StatusInternalServerError)
		return
	}
	if progress == nil {
		progress = []map[string]interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progress)
}

// GetAssessmentSummary combines job status, progress and result counts
// @Summary Get assessment summary
// @Description Combined job status, stage progress and per-assessor row counts
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} map[string]interface{} "Job summary"
// @Failure 404 {object} map[string]interface{} "Assessment not found"
// @Router /assessments/{id}/summary [get]
func GetAssessmentSummary(w http.ResponseWriter, r *http.Request) {
	jobID, ok := extractJobID(w, r)
	if !ok {
		return
	}

	job, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Assessment not found", http.StatusNotFound)
		return
	}

	progress, _ := store.GetStageProgress(jobID)
	tables, _ := store.GetAssessmentResults(jobID)

	assessors := make([]map[string]interface{}, 0, len(tables))
	for _, table := range tables {
		assessors = append(assessors, map[string]interface{}{
			"assessor": table.Assessor,
			"rows":     len(table.Rows),
			"excluded": table.Excluded,
		})
	}

	resp := map[string]interface{}{
		"job":       job,
		"progress":  progress,
		"assessors": assessors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// DownloadOutput serves a chart, table or report file from a job's
// output directory
// @Summary Download an output file
// @Description Download a rendered chart, exported table or report for a job
// @Tags assessments
// @Produce octet-stream
// @Param id path string true "Assessment ID"
// @Param file path string true "File name"
// @Success 200 {file} binary "File contents"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{id}/{file} [get]
func DownloadOutput(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 5 {
		http.Error(w, "Invalid download path", http.StatusBadRequest)
		return
	}
	jobID := parts[3]
	fileName := filepath.Base(parts[4])

	path := filepath.Join("exports", jobID, fileName)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}

// extractJobID pulls the job id segment out of /api/v1/assessments/{id}[/...]
func extractJobID(w http.ResponseWriter, r *http.Request) (string, bool) {
	const prefix = "/api/v1/assessments/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, "Invalid assessment ID", http.StatusBadRequest)
		return "", false
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	jobID := strings.SplitN(rest, "/", 2)[0]
	if jobID == "" {
		http.Error(w, "Invalid assessment ID", http.StatusBadRequest)
		return "", false
	}
	return jobID, true
}
