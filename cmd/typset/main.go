package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Andrew-Schwartz/typset-image/internal/cli"
)

func main() {
	// .env is optional; it carries things like HONEYBADGER_API_KEY.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
