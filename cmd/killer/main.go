package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"killer/internal/cli"
	"killer/internal/logger"
)

func main() {
	log.SetFlags(0)

	// .env is optional; every setting also has a flag.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	err := cli.Execute()
	logger.Sync()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}
