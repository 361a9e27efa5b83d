package main

import (
	"log"

	"github.com/MrSnakeDoc/curator/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ curator failed to start: %v", err)
	}
}
