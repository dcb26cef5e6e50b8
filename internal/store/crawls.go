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

package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrCrawlNotFound is returned when no crawl has the requested ID
var ErrCrawlNotFound = errors.New("crawl not found")

// CreateCrawl records the start of a crawl session
func (s *Store) CreateCrawl(baseURL, outputDir string, startedAt time.Time) (*Crawl, error) {
	crawl := Crawl{
		BaseURL:   baseURL,
		OutputDir: outputDir,
		Status:    CrawlStatusRunning,
		StartedAt: startedAt.Unix(),
	}

	if err := s.db.Create(&crawl).Error; err != nil {
		return nil, fmt.Errorf("failed to create crawl: %v", err)
	}

	return &crawl, nil
}

// RecordPage appends a page outcome to a crawl. Safe for concurrent use.
func (s *Store) RecordPage(crawlID uint, page *CrawledPage) error {
	page.ID = 0
	page.CrawlID = crawlID
	if err := s.db.Create(page).Error; err != nil {
		return fmt.Errorf("failed to record page %s: %v", page.URL, err)
	}
	return nil
}

// FinishCrawl closes a crawl with its final status and totals.
// FailedPages is derived from the recorded pages.
func (s *Store) FinishCrawl(crawlID uint, status string, totalPages int, errMsg string, finishedAt time.Time) error {
	var failed int64
	if err := s.db.Model(&CrawledPage{}).Where("crawl_id = ? AND error <> ''", crawlID).Count(&failed).Error; err != nil {
		return fmt.Errorf("failed to count failed pages: %v", err)
	}

	result := s.db.Model(&Crawl{}).Where("id = ?", crawlID).Updates(map[string]interface{}{
		"status":       status,
		"total_pages":  totalPages,
		"failed_pages": int(failed),
		"error":        errMsg,
		"finished_at":  finishedAt.Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to finish crawl: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrCrawlNotFound, crawlID)
	}
	return nil
}

// ListCrawls returns the most recent crawls first. limit <= 0 returns all of them.
func (s *Store) ListCrawls(limit int) ([]Crawl, error) {
	var crawls []Crawl
	db := s.db.Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&crawls).Error; err != nil {
		return nil, fmt.Errorf("failed to list crawls: %v", err)
	}
	return crawls, nil
}

// GetCrawl gets a crawl by ID
func (s *Store) GetCrawl(id uint) (*Crawl, error) {
	var crawl Crawl
	result := s.db.First(&crawl, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrCrawlNotFound, id)
		}
		return nil, fmt.Errorf("failed to get crawl: %v", result.Error)
	}
	return &crawl, nil
}

// GetCrawlPages returns the pages of a crawl in the order they were recorded
func (s *Store) GetCrawlPages(crawlID uint) ([]CrawledPage, error) {
	var pages []CrawledPage
	result := s.db.Where("crawl_id = ?", crawlID).Order("id ASC").Find(&pages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get crawl pages: %v", result.Error)
	}
	return pages, nil
}

// DeleteCrawl deletes a crawl and all of its pages
func (s *Store) DeleteCrawl(crawlID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("crawl_id = ?", crawlID).Delete(&CrawledPage{}).Error; err != nil {
			return fmt.Errorf("failed to delete crawl pages: %v", err)
		}
		result := tx.Delete(&Crawl{}, crawlID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete crawl: %v", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %d", ErrCrawlNotFound, crawlID)
		}
		return nil
	})
}
