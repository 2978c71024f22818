package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-occurrence-assess/internal/assess"
	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/internal/store"
)

// ------------------- Pipeline Runner -------------------

// Run executes an assessment job end to end: ingest, clean, bin into
// periods, fan the assessors out, export. Record-level problems are
// logged and counted; only a malformed job spec or an unusable dataset
// fails the run.
func Run(ctx context.Context, jobID string, job model.AssessmentJobSpec) (err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting assessment for job: %s\n", jobID)

	store.UpdateJobStatus(jobID, "running")

	// Defer function to handle status updates on completion/error
	defer func() {
		if err != nil {
			store.UpdateJobStatus(jobID, "failed")
			store.SaveJobError(jobID, err)
		}
	}()

	if err := validateJob(job); err != nil {
		return err
	}

	// Parse job timeout
	timeout, terr := time.ParseDuration(job.Concurrency.JobTimeout)
	if terr != nil {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bufSize := job.Concurrency.ChannelBufferSize
	if bufSize == 0 {
		bufSize = 100
	}
	recordsCh := make(chan GenericRecord, bufSize)
	cleanedCh := make(chan model.Occurrence, bufSize)
	errorCh := make(chan error, bufSize)

	var wg sync.WaitGroup

	// --- ERROR LOGGER ---
	// Separate waitgroup: the logger exits only when errorCh closes,
	// which happens after the producer stages are done
	var logWG sync.WaitGroup
	logWG.Add(1)
	go func() {
		defer logWG.Done()
		for e := range errorCh {
			fmt.Printf("❌ Error in job %s: %v\n", jobID, e)
			store.SavePipelineLog(jobID, "pipeline", "warning", e.Error(), nil)
		}
	}()

	// --- INGESTION STAGE ---
	wg.Add(1)
	go func() {
		defer wg.Done()
		startTime := time.Now()
		store.UpdateJobStatus(jobID, "ingesting")
		store.SaveStageProgress(jobID, "ingestion", "started", &startTime, nil, 0, 0)
		store.SavePipelineLog(jobID, "ingestion", "info", "Starting ingestion stage", map[string]interface{}{
			"sources_count": len(job.Sources),
		})

		StartIngestion(ctx, job.Sources, job.Concurrency.APIRetry, recordsCh, errorCh)
		close(recordsCh) // safe: only this goroutine closes recordsCh

		endTime := time.Now()
		store.SaveStageProgress(jobID, "ingestion", "completed", &startTime, &endTime, 0, 0)
	}()

	// --- CLEANING STAGE ---
	// CleanRecords spawns its own workers and returns the live counters
	fmt.Println("🧹 Starting cleaning stage...")
	store.UpdateJobStatus(jobID, "cleaning")

	numWorkers := job.Concurrency.Workers.Clean
	if numWorkers == 0 {
		numWorkers = 3 // default
	}
	cleanStats := CleanRecords(ctx, recordsCh, cleanedCh, errorCh, numWorkers)

	// --- COLLECT ---
	// Assessors are pure functions over the full dataset, so the stream
	// is materialized here before fan-out.
	var records []model.Occurrence
	for occ := range cleanedCh {
		records = append(records, occ)
	}

	if len(records) == 0 {
		wg.Wait()
		close(errorCh)
		logWG.Wait()
		return fmt.Errorf("no usable records ingested from %d sources", len(job.Sources))
	}

	// --- BINNING STAGE ---
	store.UpdateJobStatus(jobID, "binning")
	binStart := time.Now()
	binned, berr := assess.BinPeriods(records, job.Periods)
	if berr != nil {
		wg.Wait()
		close(errorCh)
		logWG.Wait()
		return fmt.Errorf("period binning failed: %w", berr)
	}
	binEnd := time.Now()
	store.SaveStageProgress(jobID, "binning", "completed", &binStart, &binEnd, binned.Assigned, binned.Unassigned+binned.NoYear)
	store.SavePipelineLog(jobID, "binning", "info", "Period binning completed", map[string]interface{}{
		"total":      binned.Total,
		"assigned":   binned.Assigned,
		"unassigned": binned.Unassigned,
		"no_year":    binned.NoYear,
	})
	fmt.Printf("📅 Binning: %d of %d records assigned to %d periods (%d outside periods, %d without year)\n",
		binned.Assigned, binned.Total, len(binned.Periods), binned.Unassigned, binned.NoYear)

	// --- ASSESSMENT STAGE (fan-out) ---
	store.UpdateJobStatus(jobID, "assessing")
	tables := runAssessors(ctx, jobID, binned, job, errorCh)

	// --- EXPORT STAGE ---
	store.UpdateJobStatus(jobID, "exporting")
	exportResults := ExportTables(ctx, tables, cleanStats.Snapshot(), job, jobID)

	exportCount := 0
	for result := range exportResults {
		exportCount++
		if result.Success {
			fmt.Printf("✅ Export %d: %d records exported to %s (%s)\n",
				exportCount, result.RecordCount, result.Path, result.Type)
		} else {
			fmt.Printf("❌ Export %d failed: %s\n", exportCount, result.Error)
		}
	}
	fmt.Printf("💾 Export Summary: %d export operations completed\n", exportCount)

	// Wait for upstream stages, then close the error channel and let
	// the logger drain it
	wg.Wait()
	close(errorCh)
	logWG.Wait()

	duration := time.Since(start)
	fmt.Printf("🏁 Assessment completed for job: %s in %v\n", jobID, duration)

	store.UpdateJobStatus(jobID, "completed")
	return nil
}

// runAssessors fans the configured assessors out, one goroutine each,
// and collects their tables in spec order
func runAssessors(ctx context.Context, jobID string, binned *assess.Binned, job model.AssessmentJobSpec, errorCh chan<- error) []model.SummaryTable {
	names := job.Assessors
	if len(names) == 0 {
		names = assess.Names()
	}

	startTime := time.Now()
	store.SaveStageProgress(jobID, "assessment", "started", &startTime, nil, 0, 0)

	results := make([]*model.SummaryTable, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		runner, err := assess.Lookup(name)
		if err != nil {
			errorCh <- err
			continue
		}

		wg.Add(1)
		go func(slot int, name string, run assess.Runner) {
			defer wg.Done()
			fmt.Printf("📊 Assessor %s: starting\n", name)

			table, err := run(ctx, binned, job)
			if err != nil {
				errorCh <- fmt.Errorf("assessor %s failed: %w", name, err)
				store.SavePipelineLog(jobID, "assessment", "warning", "Assessor failed", map[string]interface{}{
					"assessor": name,
					"error":    err.Error(),
				})
				return
			}

			results[slot] = &table
			fmt.Printf("📊 Assessor %s: %d rows, %d records excluded\n", name, len(table.Rows), table.Excluded)
		}(i, name, runner)
	}
	wg.Wait()

	var tables []model.SummaryTable
	for _, t := range results {
		if t != nil {
			tables = append(tables, *t)
		}
	}

	endTime := time.Now()
	store.SaveStageProgress(jobID, "assessment", "completed", &startTime, &endTime, len(tables), len(names)-len(tables))
	fmt.Printf("📊 Assessment stage complete: %d of %d assessors produced tables\n", len(tables), len(names))
	return tables
}

// validateJob rejects specs the pipeline cannot run at all
func validateJob(job model.AssessmentJobSpec) error {
	if len(job.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	if err := assess.ValidatePeriods(job.Periods); err != nil {
		return fmt.Errorf("invalid period list: %w", err)
	}
	if err := assess.ValidateGroupBy(job.GroupBy); err != nil {
		return err
	}
	for _, name := range job.Assessors {
		if _, err := assess.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}
