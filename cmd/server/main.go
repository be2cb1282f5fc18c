// Command server runs the pension administration API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/simp-lee/pension/internal/app"
	"github.com/simp-lee/pension/internal/config"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config path]\n\nRuns the pension administration API: members, accounts, transactions and scheduled contribution reminders.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "configs/config.yaml", "pension service YAML config; APP__ environment variables override it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("pension: load config %s: %v", *configPath, err)
	}

	srv, err := app.New(cfg)
	if err != nil {
		log.Fatalf("pension: init: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("pension: %v", err)
	}
}
