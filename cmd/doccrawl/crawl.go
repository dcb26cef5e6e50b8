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

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentberlin/doccrawl"
	"github.com/agentberlin/doccrawl/internal/app"
	"github.com/agentberlin/doccrawl/internal/config"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a documentation site",
		Long: `Crawl starts at the given URL and follows every link on the same host.
For each page, the main content is written under the output directory at a
path mirroring the URL, next to a .json file with the URL, title and fetch time.

Settings are read from the configuration file first; flags given on the
command line override them.

Examples:
  # Crawl with headless Chrome
  doccrawl crawl https://docs.example.com/

  # Crawl a static site, at most 200 pages, 4 at a time
  doccrawl crawl --renderer static -p 200 -n 4 https://docs.example.com/

  # Only the guide, skipping the changelog
  doccrawl crawl --include '/guide/**' --exclude '**/changelog*' https://docs.example.com/

Configuration file (.doccrawl.yaml) example:
  output_dir: ./docs
  max_concurrent: 5
  delay: 0.25
  renderer: chromedp
  respect_robots_txt: true
  exclude_paths:
    - /blog/**`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("output-dir", "o", doccrawl.DefaultOutputDir, "Directory the pages are written to")
	cmd.Flags().IntP("max-concurrent", "n", doccrawl.DefaultMaxConcurrent, "Number of pages fetched in parallel")
	cmd.Flags().Float64P("delay", "d", doccrawl.DefaultDelay.Seconds(), "Pause after each fetched page, in seconds")
	cmd.Flags().IntP("max-pages", "p", 0, "Stop after this many pages (0 = unlimited)")

	cmd.Flags().StringP("renderer", "r", string(doccrawl.RendererChromedp), "Page renderer: chromedp or static")
	cmd.Flags().Bool("headless", true, "Run Chrome without a window")
	cmd.Flags().Duration("navigation-timeout", doccrawl.DefaultNavigationTimeout, "Timeout for loading a single page")
	cmd.Flags().Duration("idle-timeout", doccrawl.DefaultIdleTimeout, "How long an idle worker waits before checking whether the crawl is over")
	cmd.Flags().String("user-agent", doccrawl.DefaultUserAgent, "User agent sent with every request")

	cmd.Flags().StringSlice("include", nil, "Only crawl URL paths matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "Never crawl URL paths matching these glob patterns")
	cmd.Flags().Bool("respect-robots", false, "Skip URLs disallowed by robots.txt")
	cmd.Flags().Bool("sitemap", false, "Seed the crawl from the site's sitemap")
	cmd.Flags().StringSlice("sitemap-url", nil, "Sitemap locations (default: /sitemap.xml)")

	cmd.Flags().BoolP("json", "j", false, "Print the final stats as JSON")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	file, err := loadConfigFile(cmd)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd, args[0], file)
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	st, err := openStore(cmd, file)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	a := app.NewApp(st, nil, newLogger(cmd))
	if err := a.CheckSystemHealth(cfg.Renderer); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := a.RunCrawl(ctx, cfg)
	if outcome == nil {
		return err
	}

	if jsonOutput {
		if perr := printStatsJSON(cmd.OutOrStdout(), outcome.Stats); perr != nil {
			return errors.Join(err, perr)
		}
	} else {
		printOutcome(cmd.OutOrStdout(), outcome)
	}
	return err
}

// buildConfig creates a crawl Config from defaults, the configuration file
// and the flags set on the command line, in that order.
func buildConfig(cmd *cobra.Command, baseURL string, file *config.File) (*doccrawl.Config, error) {
	cfg := doccrawl.NewDefaultConfig(baseURL)
	if file != nil {
		file.Apply(cfg)
	}

	flags := cmd.Flags()
	var err error

	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-concurrent") {
		if cfg.MaxConcurrent, err = flags.GetInt("max-concurrent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		delay, err := flags.GetFloat64("delay")
		if err != nil {
			return nil, err
		}
		cfg.Delay = time.Duration(delay * float64(time.Second))
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("renderer") {
		renderer, err := flags.GetString("renderer")
		if err != nil {
			return nil, err
		}
		cfg.Renderer = doccrawl.Renderer(renderer)
	}
	if flags.Changed("headless") {
		if cfg.Headless, err = flags.GetBool("headless"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("navigation-timeout") {
		if cfg.NavigationTimeout, err = flags.GetDuration("navigation-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("idle-timeout") {
		if cfg.IdleTimeout, err = flags.GetDuration("idle-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("include") {
		if cfg.IncludePaths, err = flags.GetStringSlice("include"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("exclude") {
		if cfg.ExcludePaths, err = flags.GetStringSlice("exclude"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("respect-robots") {
		if cfg.RespectRobotsTxt, err = flags.GetBool("respect-robots"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("sitemap") {
		if cfg.UseSitemap, err = flags.GetBool("sitemap"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("sitemap-url") {
		if cfg.SitemapURLs, err = flags.GetStringSlice("sitemap-url"); err != nil {
			return nil, err
		}
		cfg.UseSitemap = true
	}

	cfg.Verbose = getVerboseFlag(cmd)

	switch cfg.Renderer {
	case doccrawl.RendererChromedp, doccrawl.RendererStatic:
	default:
		return nil, fmt.Errorf("unknown renderer %q (want %s or %s)", cfg.Renderer, doccrawl.RendererChromedp, doccrawl.RendererStatic)
	}

	return cfg, nil
}

func printStatsJSON(w io.Writer, stats doccrawl.CrawlStats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func printOutcome(w io.Writer, outcome *app.CrawlOutcome) {
	fmt.Fprintf(w, "Crawl %s\n", outcome.Status)
	fmt.Fprintf(w, "  Base URL:  %s\n", outcome.Stats.BaseURL)
	fmt.Fprintf(w, "  Pages:     %d (%d failed)\n", outcome.Stats.TotalPages, outcome.FailedPages)
	fmt.Fprintf(w, "  Output:    %s\n", outcome.Stats.OutputDirectory)
	fmt.Fprintf(w, "  Duration:  %s\n", outcome.Duration.Round(time.Millisecond))
	if outcome.CrawlID != 0 {
		fmt.Fprintf(w, "  History:   doccrawl history show %d\n", outcome.CrawlID)
	}
}
