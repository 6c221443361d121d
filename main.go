// ABOUTME: Entry point for the Wolf Carports sales desk
// ABOUTME: Routes to the web server, export, and user management commands
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wolfcarports/salesdesk/auth"
	"github.com/wolfcarports/salesdesk/cli"
	"github.com/wolfcarports/salesdesk/config"
	"github.com/wolfcarports/salesdesk/db"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dataDir := flag.String("data-dir", "", "Data directory holding the overlay db, users file, and exports")
	dbPath := flag.String("db-path", "", "Overlay database path (default: $XDG_DATA_HOME/salesdesk/state.db)")
	snapshotPath := flag.String("snapshot", "", "Snapshot CSV file or directory to scan")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("salesdesk version %s\n", version)
		os.Exit(0)
	}

	if *dataDir != "" {
		// Set before config.Load so the derived paths follow it.
		os.Setenv("SALESDESK_DATA_DIR", *dataDir)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *snapshotPath != "" {
		cfg.SnapshotPath = *snapshotPath
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "serve":
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		log.Printf("Overlay database: %s", cfg.DBPath)
		if *initOnly {
			log.Println("Database initialized successfully")
			os.Exit(0)
		}

		if err := cli.ServeCommand(database, cfg); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	case "export":
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := cli.ExportCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "users":
		if len(commandArgs) == 0 {
			fmt.Println("Error: users requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		store := auth.NewStore(cfg.UsersPath)
		sub := commandArgs[0]
		subArgs := commandArgs[1:]

		switch sub {
		case "add":
			if err := cli.UsersAddCommand(store, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "set-password":
			if err := cli.UsersSetPasswordCommand(store, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "list":
			if err := cli.UsersListCommand(store, subArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown users subcommand: %s\n", sub)
			printUsage()
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`salesdesk - Wolf Carports sales operations dashboard (v%s)

USAGE:
  salesdesk [global flags] <command> [command flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --data-dir <path>      Data directory (default: $XDG_DATA_HOME/salesdesk)
  --db-path <path>       Overlay database path (default: $XDG_DATA_HOME/salesdesk/state.db)
  --snapshot <path>      Snapshot CSV file or directory to scan for the newest snapshot
  --init                 Initialize database and exit (use with 'serve')

COMMANDS:
  serve                  Start the dashboard web server
  export                 Export ledger CSVs
  users                  Manage dashboard accounts

EXPORT COMMANDS:
  salesdesk export actions --start 2026-08-01 --end 2026-08-31
  salesdesk export notes --start 2026-08-01 --end 2026-08-31
    --dir <path>            Output directory (default: $XDG_DATA_HOME/salesdesk/exports)

USERS COMMANDS:
  salesdesk users add --email rep@wolfcarports.com
    --name <name>           Display name
    --role <role>           manager or wolf_rep (default: wolf_rep)
    --owner <owner>         Owner value for lead scoping
    --rep-phone <e164>      Rep's JustCall number

  salesdesk users set-password --email rep@wolfcarports.com
  salesdesk users list

ENVIRONMENT:
  SALESDESK_DATA_DIR, SALESDESK_SNAPSHOT_PATH, SALESDESK_DB_PATH,
  SALESDESK_USERS_PATH, SALESDESK_TEMPLATES_PATH, SALESDESK_EXPORT_DIR,
  SALESDESK_LISTEN_ADDR, SALESDESK_SESSION_SECRET,
  JUSTCALL_API_KEY, JUSTCALL_API_SECRET
  A .env file in the working directory is loaded at startup.

EXAMPLES:
  # Start the dashboard against a snapshot directory
  salesdesk --snapshot /data/snapshots serve

  # Create the first manager from the CLI instead of /setup
  salesdesk users add --email boss@wolfcarports.com --role manager

  # Export last month's actions
  salesdesk export actions --start 2026-07-01 --end 2026-07-31
`, version)
}
