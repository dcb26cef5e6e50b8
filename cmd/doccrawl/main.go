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

// doccrawl CLI
//
// Crawls a documentation site and saves the main content of every page to disk.
//
// Usage:
//
//	doccrawl <command> [flags]
//
// Commands:
//
//	crawl     Crawl a documentation site
//	history   List recorded crawls or show one as markdown
//	mcp       Serve crawl tools over the Model Context Protocol
//	version   Show version information
package main

func main() {
	Execute()
}
