package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/internal/pipeline"
	"go-occurrence-assess/internal/store"
)

func main() {
	specPath := flag.String("spec", "assessment.json", "path to the assessment job file")
	dbPath := flag.String("db", "assess.db", "path to the tracking database")
	flag.Parse()

	data, err := os.ReadFile(*specPath)
	if err != nil {
		fmt.Printf("❌ Failed to read job file: %v\n", err)
		os.Exit(1)
	}

	var job model.AssessmentJobSpec
	if err := json.Unmarshal(data, &job); err != nil {
		fmt.Printf("❌ Invalid job file: %v\n", err)
		os.Exit(1)
	}

	if err := store.InitDB(*dbPath); err != nil {
		fmt.Printf("❌ Failed to init tracking DB: %v\n", err)
		os.Exit(1)
	}

	jobID := uuid.New().String()
	if err := store.SaveJob(jobID, job); err != nil {
		fmt.Printf("❌ Failed to save job: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🚀 Starting assessment %s\n", jobID)

	if err := pipeline.Run(context.Background(), jobID, job); err != nil {
		store.SaveJobError(jobID, err)
		fmt.Printf("❌ Assessment failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Assessment %s completed\n", jobID)
}
