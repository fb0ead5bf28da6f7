package main

import (
	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/storage/database"
	"github.com/trezcool/deptportal/storage/stores"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Database.Backend != core.BackendPostgres {
		return errNotPostgres
	}
	if cli.db == nil {
		db, err := stores.OpenPostgres(cli.conf)
		if err != nil {
			return err
		}
		cli.db = db
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}
