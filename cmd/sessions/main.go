package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"parkingconsole/internal/config"
	"parkingconsole/internal/session"
)

func main() {
	// Define subcommands
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	purgeCmd := flag.NewFlagSet("purge", flag.ExitOnError)
	clearCmd := flag.NewFlagSet("clear", flag.ExitOnError)

	// List flags
	listAuthOnly := listCmd.Bool("authenticated", false, "Only show signed-in sessions")

	// Purge flags
	purgeIdle := purgeCmd.Duration("idle", 0, "Remove sessions idle for longer than this (default: SESSION_DURATION)")

	// Clear flags
	clearID := clearCmd.String("id", "", "Session id to remove (required)")
	clearForce := clearCmd.Bool("force", false, "Skip the confirmation prompt")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	storage, closeStorage, err := session.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open session storage: %v", err)
	}
	defer closeStorage()

	switch os.Args[1] {
	case "list":
		listCmd.Parse(os.Args[2:])
		handleList(ctx, storage, *listAuthOnly)

	case "purge":
		purgeCmd.Parse(os.Args[2:])
		idle := *purgeIdle
		if idle <= 0 {
			idle = cfg.SessionDuration
		}
		handlePurge(ctx, storage, idle)

	case "clear":
		clearCmd.Parse(os.Args[2:])
		if *clearID == "" {
			fmt.Println("Error: -id flag is required")
			clearCmd.PrintDefaults()
			os.Exit(1)
		}
		handleClear(ctx, storage, *clearID, *clearForce)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleList(ctx context.Context, storage session.Storage, authOnly bool) {
	entries, err := storage.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLAST ACTIVE\tSIGNED IN")
	shown := 0
	for _, e := range entries {
		if authOnly && !e.Authenticated {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%t\n", e.ID, e.UpdatedAt.Format(time.RFC3339), e.Authenticated)
		shown++
	}
	w.Flush()

	log.Printf("%d session(s)", shown)
}

func handlePurge(ctx context.Context, storage session.Storage, idle time.Duration) {
	before := time.Now().Add(-idle)
	log.Printf("Removing sessions idle since %s", before.Format(time.RFC3339))

	n, err := storage.Purge(ctx, before)
	if err != nil {
		log.Fatalf("Purge failed: %v", err)
	}

	log.Printf("Purge complete! Removed %d session(s)", n)
}

func handleClear(ctx context.Context, storage session.Storage, sid string, force bool) {
	if !force {
		fmt.Printf("WARNING: This will sign out session %s. Type 'yes' to confirm: ", sid)
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Clear cancelled")
			return
		}
	}

	if err := storage.DeleteValues(ctx, sid); err != nil {
		log.Fatalf("Failed to clear session: %v", err)
	}

	log.Printf("Session %s cleared", sid)
}

func printUsage() {
	fmt.Println("ParkWise Admin Session Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sessions list [options]     List stored sessions")
	fmt.Println("  sessions purge [options]    Remove idle sessions")
	fmt.Println("  sessions clear [options]    Remove one session")
	fmt.Println()
	fmt.Println("List Options:")
	fmt.Println("  -authenticated    Only show signed-in sessions")
	fmt.Println()
	fmt.Println("Purge Options:")
	fmt.Println("  -idle <duration>  Idle cutoff, e.g. 12h (default: SESSION_DURATION)")
	fmt.Println()
	fmt.Println("Clear Options:")
	fmt.Println("  -id <sid>         Session id (required)")
	fmt.Println("  -force            Skip the confirmation prompt")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  SESSION_BACKEND  Session storage: memory, sql or redis (default: sql)")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./console.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  REDIS_ADDR       Redis address (default: localhost:6379)")
}
