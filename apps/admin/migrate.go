package main

import (
	"fmt"

	"github.com/rollcallhq/rollcall/storage/database"
)

var (
	migrateUpFunc   = database.Migrate  // mockable
	migrateDownFunc = database.Rollback // mockable
)

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		return errHelp
	}

	switch args[0] {
	case "up":
		return migrateUpFunc(cli.db, cli.conf)
	case "down":
		return migrateDownFunc(cli.db, cli.conf)
	default:
		return fmt.Errorf("%q: no such command", args[0])
	}
}
