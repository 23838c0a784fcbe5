package main

import (
	"os"

	"docqa/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
