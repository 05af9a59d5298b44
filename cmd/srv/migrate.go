package main

import (
	"github.com/openisle/backend/internal/entity"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	s.loadConfig()
	s.loadDatabase()

	return entity.MigrateTable(s.ctx)
}
