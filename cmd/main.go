package main

import (
	"os"

	"github.com/shenikar/bear_coordination/internal/cli"
)

// @title Bear Coordination API
// @version 1.0
// @description Local control API of the emergency incident coordination engine.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
