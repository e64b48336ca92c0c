package main

import (
	"os"

	"github.com/filmtrack/showtime-tracker/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		os.Exit(1)
	}
}
