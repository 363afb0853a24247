package main

import (
	"fmt"

	"github.com/esirbde/skisatiresa/storage/database"
)

// mockable
var (
	migrateUpFunc      = database.Migrate
	migrateDownFunc    = database.MigrateDown
	migrateVersionFunc = database.Version
)

func (cli *commandLine) migrate(command string) error {
	switch command {
	case "up":
		return migrateUpFunc(cli.db)
	case "down":
		return migrateDownFunc(cli.db)
	case "version":
		v, dirty, err := migrateVersionFunc(cli.db)
		if err != nil {
			return err
		}
		if dirty {
			fmt.Printf("schema version: %d (dirty)\n", v)
		} else {
			fmt.Printf("schema version: %d\n", v)
		}
		return nil
	default:
		return fmt.Errorf("%q: no such command", command)
	}
}
