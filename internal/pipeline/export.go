package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/internal/render"
	"go-occurrence-assess/internal/store"
	"go-occurrence-assess/pkg/utils"
)

// ExportManager handles export of assessment outputs
type ExportManager struct {
	JobID      string
	ExportSpec *model.Export
	Output     *utils.OutputManager
}

// ExportTables writes the assessors' summary tables, charts and report
// according to the job's export configuration
func ExportTables(ctx context.Context, tables []model.SummaryTable, cleanStats CleanStats, job model.AssessmentJobSpec, jobID string) <-chan model.ExportResult {
	out := make(chan model.ExportResult, 10)

	// If no export config, just persist to the tracking store
	if job.Export == nil {
		go func() {
			defer close(out)
			for _, table := range tables {
				select {
				case <-ctx.Done():
					return
				default:
					store.SaveAssessmentResult(jobID, table)
				}
			}
			fmt.Printf("💾 Export Summary: %d tables stored (no export configured)\n", len(tables))
		}()
		return out
	}

	em := &ExportManager{
		JobID:      jobID,
		ExportSpec: job.Export,
		Output:     utils.NewOutputManager("exports"),
	}

	go func() {
		defer close(out)

		fmt.Printf("💾 Export: Starting export of %d summary tables\n", len(tables))

		if em.ExportSpec.DB != "" {
			out <- em.exportToDatabase(ctx, tables)
		}

		if em.ExportSpec.File != "" {
			out <- em.exportToFile(tables)
		}

		chartPaths := make(map[string][]string)
		if em.ExportSpec.Charts {
			for _, table := range tables {
				select {
				case <-ctx.Done():
					return
				default:
				}
				for _, result := range render.RenderCharts(jobID, table, em.Output) {
					if result.Success {
						chartPaths[table.Assessor] = append(chartPaths[table.Assessor], filepath.Base(result.Path))
					}
					out <- result
				}
			}
		}

		if em.ExportSpec.Report {
			path, err := em.Output.GetOutputFilePath(jobID, "report.md")
			if err != nil {
				out <- model.ExportResult{Type: "report", Success: false, Error: err.Error(), ExportedAt: time.Now()}
			} else {
				result, _ := render.WriteReport(path, jobID, job, tables, chartPaths)
				out <- result
			}
		}

		store.SavePipelineLog(jobID, "export", "info", "Export stage completed", map[string]interface{}{
			"tables":          len(tables),
			"records_cleaned": cleanStats.Total,
			"taxa_recoded":    cleanStats.RecodedTaxa,
		})
	}()

	return out
}

// exportToDatabase stores each summary table in the tracking store
func (em *ExportManager) exportToDatabase(ctx context.Context, tables []model.SummaryTable) model.ExportResult {
	saved := 0
	var lastError error

	for _, table := range tables {
		if ctx.Err() != nil {
			break
		}
		if err := store.SaveAssessmentResult(em.JobID, table); err != nil {
			lastError = err
			fmt.Printf("❌ Failed to save summary table: %v\n", err)
		} else {
			saved++
		}
	}

	result := model.ExportResult{
		Type:        "database",
		Path:        "assessment_results",
		RecordCount: saved,
		Success:     lastError == nil,
		ExportedAt:  time.Now(),
	}
	if lastError != nil {
		result.Error = lastError.Error()
	}
	return result
}

// exportToFile writes all summary tables to one CSV or JSON file
func (em *ExportManager) exportToFile(tables []model.SummaryTable) model.ExportResult {
	path, err := em.Output.GetOutputFilePath(em.JobID, em.ExportSpec.File)
	if err != nil {
		return model.ExportResult{Type: "file", Success: false, Error: err.Error(), ExportedAt: time.Now()}
	}

	var recordCount int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		recordCount, err = em.exportToJSON(path, tables)
	default:
		recordCount, err = em.exportToCSV(path, tables)
	}

	result := model.ExportResult{
		Type:        "file",
		Path:        path,
		RecordCount: recordCount,
		Success:     err == nil,
		ExportedAt:  time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
		fmt.Printf("❌ Export to file failed: %v\n", err)
	} else {
		fmt.Printf("✅ Export to file successful: %d rows exported to %s\n", recordCount, path)
	}
	return result
}

// exportToCSV writes tables in long format: one row per metric value
func (em *ExportManager) exportToCSV(path string, tables []model.SummaryTable) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"assessor", "period", "group", "record_count", "metric", "value"}
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rowCount := 0
	for _, table := range tables {
		for _, row := range table.Rows {
			metrics := make([]string, 0, len(row.Metrics))
			for m := range row.Metrics {
				metrics = append(metrics, m)
			}
			sort.Strings(metrics)

			for _, m := range metrics {
				record := []string{
					table.Assessor,
					row.Period,
					row.Group,
					strconv.Itoa(row.RecordCount),
					m,
					strconv.FormatFloat(row.Metrics[m], 'g', -1, 64),
				}
				if err := writer.Write(record); err != nil {
					return rowCount, fmt.Errorf("failed to write row: %w", err)
				}
				rowCount++
			}
		}
	}

	return rowCount, nil
}

// exportToJSON writes tables wrapped in an export metadata envelope
func (em *ExportManager) exportToJSON(path string, tables []model.SummaryTable) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"job_id":      em.JobID,
			"exported_at": time.Now().UTC(),
			"table_count": len(tables),
			"export_type": "assessment_results",
		},
		"data": tables,
	}

	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return len(tables), nil
}
