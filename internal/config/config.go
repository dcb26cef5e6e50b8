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

// Package config loads crawl defaults from a YAML file.
//
// Only keys present in the file are applied; command line flags that the
// user set explicitly are applied afterwards and win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/agentberlin/doccrawl"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is used for XDG directory paths
	AppName = "doccrawl"
	// DefaultConfigFile is looked up in the current directory
	DefaultConfigFile = ".doccrawl.yaml"
)

// ErrConfigNotFound is returned when the configuration file does not exist
var ErrConfigNotFound = errors.New("configuration file not found")

// File mirrors the YAML configuration file. Durations are in seconds.
type File struct {
	OutputDir         *string  `yaml:"output_dir"`
	MaxConcurrent     *int     `yaml:"max_concurrent"`
	Delay             *float64 `yaml:"delay"`
	MaxPages          *int     `yaml:"max_pages"`
	Renderer          *string  `yaml:"renderer"`
	Headless          *bool    `yaml:"headless"`
	NavigationTimeout *float64 `yaml:"navigation_timeout"`
	UserAgent         *string  `yaml:"user_agent"`
	IncludePaths      []string `yaml:"include_paths"`
	ExcludePaths      []string `yaml:"exclude_paths"`
	RespectRobotsTxt  *bool    `yaml:"respect_robots_txt"`
	UseSitemap        *bool    `yaml:"use_sitemap"`
	SitemapURLs       []string `yaml:"sitemap_urls"`
	// HistoryDB overrides the location of the crawl history database
	HistoryDB *string `yaml:"history_db"`
}

// XDGConfigFile returns the per-user configuration file path
func XDGConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// LoadConfigFile parses the YAML file at path.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .doccrawl.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if userConfig := XDGConfigFile(); userConfig != "" {
		if _, err := os.Stat(userConfig); err == nil {
			return userConfig
		}
	}

	return ""
}

// Apply copies every key set in the file onto cfg
func (f *File) Apply(cfg *doccrawl.Config) {
	if f.OutputDir != nil {
		cfg.OutputDir = *f.OutputDir
	}
	if f.MaxConcurrent != nil {
		cfg.MaxConcurrent = *f.MaxConcurrent
	}
	if f.Delay != nil {
		cfg.Delay = seconds(*f.Delay)
	}
	if f.MaxPages != nil {
		cfg.MaxPages = *f.MaxPages
	}
	if f.Renderer != nil {
		cfg.Renderer = doccrawl.Renderer(*f.Renderer)
	}
	if f.Headless != nil {
		cfg.Headless = *f.Headless
	}
	if f.NavigationTimeout != nil {
		cfg.NavigationTimeout = seconds(*f.NavigationTimeout)
	}
	if f.UserAgent != nil {
		cfg.UserAgent = *f.UserAgent
	}
	if f.IncludePaths != nil {
		cfg.IncludePaths = append([]string(nil), f.IncludePaths...)
	}
	if f.ExcludePaths != nil {
		cfg.ExcludePaths = append([]string(nil), f.ExcludePaths...)
	}
	if f.RespectRobotsTxt != nil {
		cfg.RespectRobotsTxt = *f.RespectRobotsTxt
	}
	if f.UseSitemap != nil {
		cfg.UseSitemap = *f.UseSitemap
	}
	if f.SitemapURLs != nil {
		cfg.SitemapURLs = append([]string(nil), f.SitemapURLs...)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
