package config

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doowon-lab/dwportal/pkg/service/codebeamer"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
)

// Tracker holds CLI flags for the downstream CodeBeamer connection
type Tracker struct {
	baseURL       string
	timeout       time.Duration
	pageDelay     time.Duration
	rateLimitWait time.Duration
	maxPages      int
}

// Flags returns CLI flags for tracker configuration
func (t *Tracker) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "codebeamer-url",
			Usage:       "Base URL of the CodeBeamer instance",
			Sources:     cli.EnvVars("DWPORTAL_CODEBEAMER_URL"),
			Destination: &t.baseURL,
		},
		&cli.DurationFlag{
			Name:        "codebeamer-timeout",
			Usage:       "HTTP timeout for downstream calls",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("DWPORTAL_CODEBEAMER_TIMEOUT"),
			Destination: &t.timeout,
		},
		&cli.DurationFlag{
			Name:        "codebeamer-page-delay",
			Usage:       "Wait between aggregated item pages",
			Value:       time.Second,
			Sources:     cli.EnvVars("DWPORTAL_CODEBEAMER_PAGE_DELAY"),
			Destination: &t.pageDelay,
		},
		&cli.DurationFlag{
			Name:        "codebeamer-rate-limit-wait",
			Usage:       "Wait after an HTTP 429 before retrying a page",
			Value:       5 * time.Second,
			Sources:     cli.EnvVars("DWPORTAL_CODEBEAMER_RATE_LIMIT_WAIT"),
			Destination: &t.rateLimitWait,
		},
		&cli.IntFlag{
			Name:        "codebeamer-max-pages",
			Usage:       "Cap on downstream pages per aggregated list call",
			Value:       100,
			Sources:     cli.EnvVars("DWPORTAL_CODEBEAMER_MAX_PAGES"),
			Destination: &t.maxPages,
		},
	}
}

// Configure builds the tracker client
func (t *Tracker) Configure() (*codebeamer.Client, error) {
	if t.baseURL == "" {
		return nil, goerr.New("codebeamer-url is required")
	}

	client, err := codebeamer.New(t.baseURL,
		codebeamer.WithHTTPClient(&http.Client{Timeout: t.timeout}),
		codebeamer.WithPageDelay(t.pageDelay),
		codebeamer.WithRateLimitWait(t.rateLimitWait),
		codebeamer.WithMaxPages(t.maxPages),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize tracker client")
	}

	logging.Default().Info("Tracker client configured",
		"base_url", t.baseURL,
		"timeout", t.timeout,
		"page_delay", t.pageDelay,
	)
	return client, nil
}
