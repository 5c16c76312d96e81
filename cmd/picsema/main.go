package main

import (
	"github.com/joho/godotenv"

	"picsema/cmd/picsema/cmd"
)

func main() {
	// Missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	cmd.Execute()
}
