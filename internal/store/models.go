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

// Crawl status constants
const (
	CrawlStatusRunning   = "running"
	CrawlStatusCompleted = "completed"
	CrawlStatusFailed    = "failed"
	CrawlStatusCancelled = "cancelled"
)

// Crawl is one crawl session
type Crawl struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	BaseURL     string        `gorm:"not null;index" json:"baseUrl"`
	OutputDir   string        `gorm:"type:text" json:"outputDir"`
	Status      string        `gorm:"not null;default:'running'" json:"status"`
	TotalPages  int           `gorm:"default:0" json:"totalPages"`  // Claimed URLs, including failed ones
	FailedPages int           `gorm:"default:0" json:"failedPages"` // Pages recorded with an error
	Error       string        `gorm:"type:text" json:"error,omitempty"`
	StartedAt   int64         `gorm:"not null;index" json:"startedAt"` // Unix seconds
	FinishedAt  int64         `json:"finishedAt,omitempty"`            // Unix seconds, 0 while running
	Pages       []CrawledPage `gorm:"foreignKey:CrawlID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   int64         `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   int64         `gorm:"autoUpdateTime" json:"-"`
}

// CrawledPage is the outcome of one claimed URL within a crawl
type CrawledPage struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	CrawlID     uint   `gorm:"not null;index" json:"crawlId"`
	URL         string `gorm:"not null" json:"url"`
	Title       string `gorm:"type:text" json:"title"`
	Path        string `gorm:"type:text" json:"path"` // Saved content file, empty on failure
	LinksCount  int    `json:"linksCount"`
	ContentHash string `json:"contentHash,omitempty"`
	Error       string `gorm:"type:text" json:"error,omitempty"`
	FetchedAt   int64  `json:"fetchedAt"` // Unix seconds
	CreatedAt   int64  `gorm:"autoCreateTime" json:"-"`
}

// Failed reports whether the page could not be fetched or saved
func (p *CrawledPage) Failed() bool {
	return p.Error != ""
}
