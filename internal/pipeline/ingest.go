package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/pkg/utils"
)

// GenericRecord is a schema-agnostic map for any occurrence source
type GenericRecord map[string]interface{}

// ------------------- Ingestion -------------------

// IngestSource starts ingestion for a single source (CSV/JSON/API)
func IngestSource(ctx context.Context, source model.Source, retries int, out chan<- GenericRecord, errors chan<- error) {
	fmt.Printf("➡️ Starting ingestion for source: %s (%s)\n", source.URL, source.Type)
	defer fmt.Printf("✅ Finished ingestion for source: %s (%s)\n", source.URL, source.Type)

	switch strings.ToLower(source.Type) {
	case "csv":
		ingestDelimited(ctx, source, out, errors)
	case "json", "api":
		ingestJSON(ctx, source, retries, out, errors)
	default:
		errors <- fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// StartIngestion starts ingestion for all sources in parallel
func StartIngestion(ctx context.Context, sources []model.Source, retries int, out chan<- GenericRecord, errors chan<- error) {
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(s model.Source) {
			defer wg.Done()
			IngestSource(ctx, s, retries, out, errors)
		}(src)
	}

	wg.Wait() // wait for all ingestion goroutines
}

// ------------------- Delimited text (CSV / DwC tab) -------------------
func ingestDelimited(ctx context.Context, source model.Source, out chan<- GenericRecord, errors chan<- error) {
	var reader io.Reader
	if strings.HasPrefix(source.URL, "http") {
		resp, err := http.Get(source.URL)
		if err != nil {
			errors <- fmt.Errorf("failed to GET CSV: %w", err)
			return
		}
		defer resp.Body.Close()
		reader = resp.Body
	} else {
		file, err := os.Open(source.URL)
		if err != nil {
			errors <- fmt.Errorf("failed to open CSV file: %w", err)
			return
		}
		defer file.Close()
		reader = file
	}

	csvReader := csv.NewReader(reader)
	csvReader.LazyQuotes = true
	if source.Delimiter == "\t" {
		csvReader.Comma = '\t'
	} else if source.Delimiter == ";" {
		csvReader.Comma = ';'
	}

	headers, err := csvReader.Read()
	if err != nil {
		errors <- fmt.Errorf("failed to read CSV header: %w", err)
		return
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
			record, err := csvReader.Read()
			if err == io.EOF {
				fmt.Printf("📄 CSV ingestion done: %d records read from %s\n", recordCount, source.URL)
				return
			} else if err != nil {
				errors <- fmt.Errorf("CSV read error: %w", err)
				continue
			}

			recMap := make(GenericRecord)
			for i, h := range headers {
				if i >= len(record) {
					break
				}
				// Clean header names: trim whitespace and remove ALL quotes
				cleanHeader := strings.TrimSpace(h)
				cleanHeader = strings.ReplaceAll(cleanHeader, `"`, "")
				recMap[cleanHeader] = utils.ParseValue(record[i])
			}
			recMap["SourceURL"] = source.URL
			if source.DatasetKey != "" {
				if _, ok := recMap["datasetKey"]; !ok {
					recMap["datasetKey"] = source.DatasetKey
				}
			}

			select {
			case <-ctx.Done():
				return
			case out <- recMap:
				recordCount++
				if recordCount%500 == 0 {
					fmt.Printf("📄 CSV: Processed %d records from %s\n", recordCount, source.URL)
				}
			}
		}
	}
}

// ------------------- JSON / API Ingestion -------------------
func ingestJSON(ctx context.Context, source model.Source, retries int, out chan<- GenericRecord, errors chan<- error) {
	bodyBytes, err := fetchJSON(ctx, source.URL, retries)
	if err != nil {
		errors <- err
		return
	}

	var raw interface{}
	if err := json.Unmarshal(bodyBytes, &raw); err != nil {
		errors <- fmt.Errorf("failed to decode JSON: %w", err)
		return
	}

	// GBIF-style API payloads nest records under "results"
	if m, ok := raw.(map[string]interface{}); ok {
		if results, ok := m["results"].([]interface{}); ok {
			raw = results
		}
	}

	recordCount := 0
	switch data := raw.(type) {
	case []interface{}:
		for _, item := range data {
			select {
			case <-ctx.Done():
				return
			default:
				if m, ok := item.(map[string]interface{}); ok {
					m["SourceURL"] = source.URL
					if source.DatasetKey != "" {
						if _, exists := m["datasetKey"]; !exists {
							m["datasetKey"] = source.DatasetKey
						}
					}
					select {
					case <-ctx.Done():
						return
					case out <- m:
						recordCount++
					}
				}
			}
		}
	case map[string]interface{}:
		data["SourceURL"] = source.URL
		select {
		case <-ctx.Done():
			return
		case out <- data:
			recordCount++
		}
	default:
		errors <- fmt.Errorf("unexpected JSON structure from %s", source.URL)
		return
	}

	fmt.Printf("🌐 JSON ingestion done: %d records read from %s\n", recordCount, source.URL)
}

// fetchJSON reads a JSON source from disk or HTTP, retrying transient
// HTTP failures with a short backoff
func fetchJSON(ctx context.Context, url string, retries int) ([]byte, error) {
	if !strings.HasPrefix(url, "http") {
		return os.ReadFile(url)
	}

	if retries < 0 {
		retries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			fmt.Printf("🌐 Retrying GET %s (attempt %d/%d)\n", url, attempt+1, retries+1)
		}

		resp, err := http.Get(url)
		if err != nil {
			lastErr = fmt.Errorf("failed to GET JSON: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read JSON body: %w", err)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error %d from %s", resp.StatusCode, url)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}
		return body, nil
	}
	return nil, lastErr
}
