// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store keeps an audit history of crawl sessions in SQLite.
// The history is informational only: a crawl never reads it back to resume.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store represents the database store
type Store struct {
	db *gorm.DB
}

// DefaultPath returns the history database location under the XDG data directory
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join("doccrawl", "history.db"))
}

// NewStore opens the history database at DefaultPath, creating it if needed
func NewStore() (*Store, error) {
	dbPath, err := DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %v", err)
	}
	return newStoreWithPath(dbPath)
}

// NewStoreForTesting creates a store with a custom database path (used for testing)
func NewStoreForTesting(dbPath string) (*Store, error) {
	return newStoreWithPath(dbPath)
}

// NewStoreAt opens the history database at dbPath. The parent directory must exist.
func NewStoreAt(dbPath string) (*Store, error) {
	return newStoreWithPath(dbPath)
}

func newStoreWithPath(dbPath string) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if _, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist: %s, error: %v", dbDir, err)
	}

	// WAL lets the CLI list history while a crawl is still recording pages
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(2)

	if err := database.AutoMigrate(&Crawl{}, &CrawledPage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return &Store{db: database}, nil
}

// DB returns the underlying GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
