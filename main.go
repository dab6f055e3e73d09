package main

import (
	"context"
	"log"

	"fieldstock/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Existing environment variables win over .env.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	cmd.Execute(context.Background())
}
