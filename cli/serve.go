// ABOUTME: Serve CLI command that wires the dashboard together
// ABOUTME: Builds the user store, snapshot loader, and web server from config
package cli

import (
	"database/sql"
	"log"

	"github.com/wolfcarports/salesdesk/auth"
	"github.com/wolfcarports/salesdesk/config"
	"github.com/wolfcarports/salesdesk/dataset"
	"github.com/wolfcarports/salesdesk/db"
	"github.com/wolfcarports/salesdesk/models"
	"github.com/wolfcarports/salesdesk/web"
)

// ServeCommand starts the dashboard web server and blocks.
func ServeCommand(database *sql.DB, cfg *config.Config) error {
	users := auth.NewStore(cfg.UsersPath)
	loader := dataset.NewLoader(cfg.SnapshotPath, func() ([]models.ReadinessRecord, error) {
		return db.AllReadiness(database)
	})

	server, err := web.NewServer(cfg, database, users, loader)
	if err != nil {
		return err
	}

	log.Printf("Snapshot source: %s", cfg.SnapshotPath)
	log.Printf("User store: %s", cfg.UsersPath)
	return server.Start()
}
