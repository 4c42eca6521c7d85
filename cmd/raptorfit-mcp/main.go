package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/raptorfit/internal/config"
	"github.com/claude/raptorfit/internal/insights"
	raptormcp "github.com/claude/raptorfit/internal/mcp"
	"github.com/claude/raptorfit/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	serverURL := flag.String("server", "", "RaptorFit server URL (remote mode, e.g. http://raptorfit.tail1234.ts.net)")
	userID := flag.Int("user", 1, "user ID for local mode")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("raptorfit-mcp", Version)
		return
	}

	// stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*configPath == "") == (*serverURL == "") {
		fmt.Fprintf(os.Stderr, "Usage: raptorfit-mcp -config config.yaml | -server <URL>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds raptormcp.DataSource
	if *serverURL != "" {
		ds = raptormcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = insights.New(db, cfg.Analytics, log)
		log.Info("local mode", "user_id", *userID)
	}

	s := raptormcp.New(ds, Version, log)
	uid := *userID
	err := server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return raptormcp.WithUserID(ctx, uid)
	}))
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
