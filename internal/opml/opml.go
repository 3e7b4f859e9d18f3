// Package opml drives the long-running OPML import job: start, poll the
// job endpoint at a fixed interval, stop on the first terminal status.
package opml

import (
	"context"
	"fmt"
	"time"

	"feeddeck/internal/feedapi"
)

const DefaultPollInterval = 500 * time.Millisecond

type Client interface {
	StartImport(ctx context.Context, req feedapi.ImportRequest) (feedapi.ImportJob, error)
	ImportStatus(ctx context.Context, jobID string) (feedapi.ImportJob, error)
}

type Poller struct {
	client   Client
	interval time.Duration
}

func NewPoller(client Client) *Poller {
	return &Poller{client: client, interval: DefaultPollInterval}
}

// SetInterval overrides the poll cadence (useful for testing).
func (p *Poller) SetInterval(d time.Duration) {
	p.interval = d
}

// Run starts an import and polls until the job reaches succeeded or failed.
// progress, when non-nil, observes every sampled job state including the
// terminal one. A failed job is returned with a nil error; the server's
// message sits in the job's Error field for inline display.
func (p *Poller) Run(ctx context.Context, req feedapi.ImportRequest, progress func(feedapi.ImportJob)) (feedapi.ImportJob, error) {
	job, err := p.client.StartImport(ctx, req)
	if err != nil {
		return feedapi.ImportJob{}, fmt.Errorf("start opml import: %w", err)
	}
	if progress != nil {
		progress(job)
	}
	if job.Terminal() {
		return job, nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}

		job, err = p.client.ImportStatus(ctx, job.ID)
		if err != nil {
			return feedapi.ImportJob{}, fmt.Errorf("poll opml import: %w", err)
		}
		if progress != nil {
			progress(job)
		}
		if job.Terminal() {
			return job, nil
		}
	}
}
