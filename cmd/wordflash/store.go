package main

import (
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/memory"
	"github.com/vytor/wordflash/internal/repository/sqlstore"
	"github.com/vytor/wordflash/internal/services"
)

// store is the opened card repository and, for SQL drivers, its database.
type store struct {
	repo     repository.CardRepository
	database *db.DB
}

func openStore(cfg config.Config) (*store, error) {
	log := logger.Default()
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("using in-memory card store; data is lost on exit")
		return &store{repo: memory.NewCardRepository()}, nil
	}

	database, err := db.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &store{repo: sqlstore.NewCardRepository(database), database: database}, nil
}

func (s *store) service(cfg config.Config) services.CardService {
	return services.NewCardService(s.repo, services.WithRetryAttempts(cfg.ReviewRetryAttempts))
}

func (s *store) Close() {
	if s.database != nil {
		logger.Debug("closing database connection")
		s.database.Close()
	}
}
