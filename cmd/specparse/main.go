// Command specparse parses one Swagger 2.0 or OpenAPI 3.x document and prints
// it.
//
//	specparse api/petstore.yaml
//	specparse --json api/petstore.json
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/novaordis/rest-playground/internal/cli"
	"github.com/novaordis/rest-playground/internal/sysutil"
)

func main() {
	_ = godotenv.Load()
	sysutil.SetLogLevel(os.Getenv("LOG_LEVEL"))
	log.Logger = sysutil.NewLogger(os.Stderr, true)

	if err := cli.NewSpecParseCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("specparse failed")
		os.Exit(1)
	}
}
