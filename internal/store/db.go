package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"go-occurrence-assess/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// InitDB opens the tracking database and creates tables if needed
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS job_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS stage_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			stage TEXT,
			status TEXT,
			started_at DATETIME,
			ended_at DATETIME,
			record_count INTEGER,
			error_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS pipeline_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			stage TEXT,
			level TEXT,
			message TEXT,
			fields TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS assessment_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			assessor TEXT,
			result TEXT,
			created_at DATETIME
		);`,
	}
	for _, ddl := range tables {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}

	return nil
}

// SaveJob stores a new assessment job
func SaveJob(jobID string, spec model.AssessmentJobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO jobs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, specJSON, "pending", now, now)
	return err
}

// SaveJobError records an error for a job
func SaveJobError(jobID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO job_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, err.Error(), now)
	return e
}

// ListJobs returns all jobs with basic info
func ListJobs() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return jobs, rows.Err()
}

// GetJob fetches full job spec and status
func GetJob(jobID string) (map[string]interface{}, error) {
	var specJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM jobs WHERE id = ?`, jobID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.AssessmentJobSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        jobID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// UpdateJobStatus updates job status
func UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// SaveStageProgress records a stage's lifecycle for a job
func SaveStageProgress(jobID, stage, status string, startedAt, endedAt *time.Time, recordCount, errorCount int) error {
	_, err := db.Exec(`INSERT INTO stage_progress (job_id, stage, status, started_at, ended_at, record_count, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		jobID, stage, status, startedAt, endedAt, recordCount, errorCount)
	return err
}

// GetStageProgress returns the recorded stage events for a job
func GetStageProgress(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT stage, status, started_at, ended_at, record_count, error_count
		FROM stage_progress WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []map[string]interface{}
	for rows.Next() {
		var stage, status string
		var startedAt, endedAt sql.NullTime
		var recordCount, errorCount int
		if err := rows.Scan(&stage, &status, &startedAt, &endedAt, &recordCount, &errorCount); err != nil {
			return nil, err
		}
		entry := map[string]interface{}{
			"stage":       stage,
			"status":      status,
			"recordCount": recordCount,
			"errorCount":  errorCount,
		}
		if startedAt.Valid {
			entry["startedAt"] = startedAt.Time
		}
		if endedAt.Valid {
			entry["endedAt"] = endedAt.Time
		}
		progress = append(progress, entry)
	}
	return progress, rows.Err()
}

// SavePipelineLog stores a structured log row for a job stage
func SavePipelineLog(jobID, stage, level, message string, fields map[string]interface{}) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		fieldsJSON = []byte("{}")
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO pipeline_logs (job_id, stage, level, message, fields, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, stage, level, message, fieldsJSON, now)
	return err
}

// GetPipelineLogs returns a job's structured log rows, newest last
func GetPipelineLogs(jobID string, limit int) ([]map[string]interface{}, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.Query(`SELECT stage, level, message, fields, created_at
		FROM pipeline_logs WHERE job_id = ? ORDER BY id LIMIT ?`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []map[string]interface{}
	for rows.Next() {
		var stage, level, message, fieldsJSON string
		var createdAt time.Time
		if err := rows.Scan(&stage, &level, &message, &fieldsJSON, &createdAt); err != nil {
			return nil, err
		}
		var fields map[string]interface{}
		json.Unmarshal([]byte(fieldsJSON), &fields)
		logs = append(logs, map[string]interface{}{
			"stage":     stage,
			"level":     level,
			"message":   message,
			"fields":    fields,
			"createdAt": createdAt,
		})
	}
	return logs, rows.Err()
}

// SaveAssessmentResult stores one assessor's summary table for a job
func SaveAssessmentResult(jobID string, table model.SummaryTable) error {
	tableJSON, err := json.Marshal(table)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO assessment_results (job_id, assessor, result, created_at) VALUES (?, ?, ?, ?)`,
		jobID, table.Assessor, tableJSON, now)
	return err
}

// GetAssessmentResults returns every stored summary table for a job
func GetAssessmentResults(jobID string) ([]model.SummaryTable, error) {
	rows, err := db.Query(`SELECT result FROM assessment_results WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []model.SummaryTable
	for rows.Next() {
		var tableJSON string
		if err := rows.Scan(&tableJSON); err != nil {
			return nil, err
		}
		var table model.SummaryTable
		if err := json.Unmarshal([]byte(tableJSON), &table); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

// GetJobErrors returns the recorded errors for a job
func GetJobErrors(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []map[string]interface{}
	for rows.Next() {
		var message string
		var createdAt time.Time
		if err := rows.Scan(&message, &createdAt); err != nil {
			return nil, err
		}
		errors = append(errors, map[string]interface{}{
			"message":   message,
			"createdAt": createdAt,
		})
	}
	return errors, rows.Err()
}
