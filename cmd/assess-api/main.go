package main

import (
	"go-occurrence-assess/internal/api"
	"go-occurrence-assess/internal/store"
	"go-occurrence-assess/pkg/router"

	_ "go-occurrence-assess/docs"
)

// @title Occurrence Assessment API
// @version 1.0
// @description REST API for running sampling-bias assessments over species occurrence records
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Init DB
	if err := store.InitDB("assess.db"); err != nil {
		panic(err)
	}

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r)

	// Start server
	r.Start(":8080")
}
