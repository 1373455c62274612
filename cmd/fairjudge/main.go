package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/scifair/fairjudge/internal/app"
	"github.com/scifair/fairjudge/internal/auth"
	"github.com/scifair/fairjudge/internal/config"
	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/pkg/ksefnet"
)

var (
	version = "dev"
)

func main() {
	configFile := flag.String("config", "", "Config file path (default: .fairjudge.yaml in . or $HOME)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `FairJudge - Science Fair Scoring and Promotion Server

Usage:
  fairjudge [options]

Options:
  -config str    Config file path (default: .fairjudge.yaml in . or $HOME)
  -version       Show version and exit
  -help          Show this help message

Configuration keys (file or FAIRJUDGE_ environment variables):
  port                HTTP server port (default 8081)
  db                  SQLite database path (default "fairjudge.db")
  loglevel            Log level: debug, info, warn, error (default "info")
  adminpw             Admin password (auto-generated if not set)
  upstream-url        National portal endpoint for result uploads
  public-url          Base URL encoded into registration card QR codes
  variance-threshold  Judge score gap requiring arbitration (default 5)
  points-by-rank      Championship points per category rank

Examples:
  fairjudge                             # Run with defaults
  fairjudge -config /etc/fairjudge.yaml # Use a specific config file
  FAIRJUDGE_PORT=8080 fairjudge         # Override the port via environment

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("fairjudge %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Setup admin authentication
	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	// Create logger with configured level
	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	// Portal URL is resolved from settings at push time; the configured
	// value only seeds the initial setting
	portalClient := ksefnet.NewHTTPClient("", appLog)

	a, err := app.New(appLog, cfg, portalClient, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	appLog.Info("Admin password", "password", password)

	if err := a.Run(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
