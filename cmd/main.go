package main

import (
	"log"
	"os"

	"invite-quiz-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
