package main

import (
	"log"

	"github.com/patric-chuzhbe/shrtclient/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatalf("initialization error: %v", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Fatalf("client error: %v", err)
	}
}
