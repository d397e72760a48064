// Command cli runs billing and maintenance tasks against the KManager
// database. `cli bill` is the entry point for an external cron.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	Execute()
}
