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

package doccrawl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// ContentHash returns a hex xxhash of content with whitespace runs collapsed,
// so pages differing only in indentation hash the same
func ContentHash(content string) string {
	normalized := strings.TrimSpace(whitespacePattern.ReplaceAllString(content, " "))
	return fmt.Sprintf("%016x", xxhash.Sum64String(normalized))
}
