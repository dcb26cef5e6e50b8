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

package testutil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// MockResponse is a canned HTTP response
type MockResponse struct {
	// StatusCode defaults to 200
	StatusCode int
	Body       []byte
	Headers    http.Header
	// Error simulates a network failure
	Error error
}

// MockTransport implements http.RoundTripper from registered responses,
// so backends can be tested without a listening server.
// Unregistered URLs answer 404.
type MockTransport struct {
	responses map[string]*MockResponse
	requests  []string
	mutex     sync.RWMutex
}

// NewMockTransport creates an empty MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{responses: make(map[string]*MockResponse)}
}

// RegisterResponse registers response for an exact URL
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if response.StatusCode == 0 {
		response.StatusCode = http.StatusOK
	}
	if response.Headers == nil {
		response.Headers = make(http.Header)
	}
	m.responses[url] = response
}

// RegisterHTML registers a 200 response with the given content type and raw body bytes
func (m *MockTransport) RegisterHTML(url, contentType string, body []byte) {
	headers := make(http.Header)
	headers.Set("Content-Type", contentType)
	m.RegisterResponse(url, &MockResponse{Body: body, Headers: headers})
}

// RegisterError makes requests for url fail with err
func (m *MockTransport) RegisterError(url string, err error) {
	m.RegisterResponse(url, &MockResponse{Error: err})
}

// Requests returns the URLs requested so far, in order
func (m *MockTransport) Requests() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]string(nil), m.requests...)
}

// RoundTrip implements http.RoundTripper
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	m.mutex.Lock()
	m.requests = append(m.requests, url)
	resp, found := m.responses[url]
	m.mutex.Unlock()

	if !found {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewBufferString("Not Found")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	return &http.Response{
		StatusCode:    resp.StatusCode,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		Header:        resp.Headers.Clone(),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, nil
}
