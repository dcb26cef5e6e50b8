// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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

// Package storage holds the visited set of a crawl session.
package storage

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Storage is an interface which handles the crawler's visited set.
// The default Storage is the InMemoryStorage, which lives for exactly one
// crawl session.
type Storage interface {
	// Init initializes the storage
	Init() error
	// VisitIfNotVisited atomically checks if a URL has been visited,
	// and if not, marks it as visited. Returns true if the URL was already visited.
	VisitIfNotVisited(url string) (bool, error)
	// IsVisited returns true if the URL was visited before IsVisited is called
	IsVisited(url string) (bool, error)
	// VisitedURLs returns a sorted snapshot of every visited URL
	VisitedURLs() ([]string, error)
	// VisitedCount returns the number of visited URLs
	VisitedCount() (int, error)
	// Close releases the storage
	Close() error
}

// InMemoryStorage is the default storage backend of doccrawl.
// URLs are bucketed by their xxhash so lookups stay cheap on large sites.
type InMemoryStorage struct {
	visitedURLs map[uint64][]string
	count       int
	lock        *sync.RWMutex
}

// NewInMemoryStorage returns an initialized InMemoryStorage
func NewInMemoryStorage() *InMemoryStorage {
	s := &InMemoryStorage{}
	s.Init()
	return s
}

// Init initializes InMemoryStorage
func (s *InMemoryStorage) Init() error {
	if s.visitedURLs == nil {
		s.visitedURLs = make(map[uint64][]string)
	}
	if s.lock == nil {
		s.lock = &sync.RWMutex{}
	}
	return nil
}

// VisitIfNotVisited implements Storage.VisitIfNotVisited()
func (s *InMemoryStorage) VisitIfNotVisited(url string) (bool, error) {
	h := xxhash.Sum64String(url)

	s.lock.Lock()
	defer s.lock.Unlock()

	for _, u := range s.visitedURLs[h] {
		if u == url {
			return true, nil
		}
	}
	s.visitedURLs[h] = append(s.visitedURLs[h], url)
	s.count++
	return false, nil
}

// IsVisited implements Storage.IsVisited()
func (s *InMemoryStorage) IsVisited(url string) (bool, error) {
	h := xxhash.Sum64String(url)

	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, u := range s.visitedURLs[h] {
		if u == url {
			return true, nil
		}
	}
	return false, nil
}

// VisitedURLs implements Storage.VisitedURLs()
func (s *InMemoryStorage) VisitedURLs() ([]string, error) {
	s.lock.RLock()
	urls := make([]string, 0, s.count)
	for _, bucket := range s.visitedURLs {
		urls = append(urls, bucket...)
	}
	s.lock.RUnlock()

	sort.Strings(urls)
	return urls, nil
}

// VisitedCount implements Storage.VisitedCount()
func (s *InMemoryStorage) VisitedCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.count, nil
}

// Close implements Storage.Close()
func (s *InMemoryStorage) Close() error {
	return nil
}
