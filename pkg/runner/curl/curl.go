// SPDX-License-Identifier: Apache-2.0

// Package curl implements the cURL runner. A step's rendered source is a
// small request description: "<METHOD> <url>" on the first line, optional
// "Header-Name: value" lines, a blank line, then the request body.
package curl

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/waypointdb/waypoint/pkg/config"
	"github.com/waypointdb/waypoint/pkg/migrations"
	"github.com/waypointdb/waypoint/pkg/reserved"
	"github.com/waypointdb/waypoint/pkg/runner"
)

func init() {
	runner.Register(reserved.Curl, New)
}

// Runner applies steps as a single HTTP request, expecting a 2xx response.
type Runner struct {
	client *http.Client
}

// New constructs the runner. cURL steps carry the target host in the
// request line itself, so cfg supplies only connection-level defaults
// (currently just the client timeout via Port, reused as seconds when
// nonzero).
func New(name string, cfg config.RunnerConfiguration) (runner.Runner, error) {
	timeout := 30 * time.Second
	if cfg.Port > 0 {
		timeout = time.Duration(cfg.Port) * time.Second
	}
	return &Runner{client: &http.Client{Timeout: timeout}}, nil
}

func (r *Runner) Apply(ctx context.Context, _ migrations.Direction, renderedSource string) error {
	method, url, headers, body, err := parseRequest(renderedSource)
	if err != nil {
		return migrations.RunnerError{Runner: reserved.Curl, Reason: "parsing request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return migrations.RunnerError{Runner: reserved.Curl, Reason: "building request", Cause: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return migrations.RunnerError{Runner: reserved.Curl, Reason: fmt.Sprintf("%s %s", method, url), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return migrations.RunnerError{
			Runner: reserved.Curl,
			Reason: fmt.Sprintf("%s %s returned status %d", method, url, resp.StatusCode),
		}
	}
	return nil
}

func parseRequest(source string) (method, url string, headers map[string]string, body string, err error) {
	scanner := bufio.NewScanner(strings.NewReader(source))
	headers = map[string]string{}

	if !scanner.Scan() {
		return "", "", nil, "", fmt.Errorf("empty request")
	}
	requestLine := strings.Fields(strings.TrimSpace(scanner.Text()))
	if len(requestLine) != 2 {
		return "", "", nil, "", fmt.Errorf(`request line must be "<METHOD> <url>"`)
	}
	method, url = strings.ToUpper(requestLine[0]), requestLine[1]

	inBody := false
	var bodyLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if inBody {
			bodyLines = append(bodyLines, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			inBody = true
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return "", "", nil, "", fmt.Errorf("malformed header line %q", line)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return method, url, headers, strings.Join(bodyLines, "\n"), scanner.Err()
}

func (r *Runner) Close() error {
	return nil
}
