// ABOUTME: Export CLI command for ledger CSVs
// ABOUTME: Writes actions or notes for a date range into the export directory
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"time"

	"github.com/wolfcarports/salesdesk/config"
	"github.com/wolfcarports/salesdesk/export"
)

// ExportCommand writes a ledger CSV. Usage: export <actions|notes> --start
// YYYY-MM-DD --end YYYY-MM-DD.
func ExportCommand(database *sql.DB, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("export requires a kind: actions or notes")
	}
	kind := args[0]

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	startStr := fs.String("start", "", "Range start, YYYY-MM-DD (required)")
	endStr := fs.String("end", "", "Range end, YYYY-MM-DD (required)")
	dir := fs.String("dir", cfg.ExportDir, "Output directory")
	_ = fs.Parse(args[1:])

	if *startStr == "" || *endStr == "" {
		return fmt.Errorf("--start and --end are required")
	}
	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	endDay, err := time.Parse("2006-01-02", *endStr)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	if endDay.Before(start) {
		return fmt.Errorf("--end must not be before --start")
	}
	end := endDay.Add(24*time.Hour - time.Second)

	var path string
	switch kind {
	case "actions":
		path, err = export.Actions(database, start, end, *dir)
	case "notes":
		path, err = export.Notes(database, start, end, *dir)
	default:
		return fmt.Errorf("unknown export kind %q: use actions or notes", kind)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
