package gachascraper

import (
	"context"
	"time"

	"github.com/distr1/gachalog/internal/gamebiz"
	"github.com/distr1/gachalog/internal/urlfinder"
)

// antiAbuseSleep is the pause injected every 5th page, per spec.md §4.11.
const antiAbuseSleep = 500 * time.Millisecond

// GachaTypeCursor is one (gacha_type, last_end_id) pair to scrape.
// LastEndID is the floor below which (inclusive) records are dropped and
// pagination for this type stops; empty means no floor.
type GachaTypeCursor struct {
	GachaType string
	LastEndID string
}

// EndpointMapping pairs one endpoint variant with the gacha types to
// scrape through it.
type EndpointMapping struct {
	Endpoint gamebiz.EndpointType
	Cursors  []GachaTypeCursor
}

// GachaLogsScraper drives the per-gacha-type pagination loop described in
// spec.md §4.11, emitting Notify fragments to a bounded, capacity-1
// channel and accumulating every kept record.
type GachaLogsScraper struct {
	requester *RetryingRequester
	url       *urlfinder.ParsedGachaUrl
	pageSize  int
	sleep     Sleeper
}

// NewGachaLogsScraper constructs a scraper for one parsed, authenticated
// URL. pageSize is the caller-chosen page size (defaults to 20 when 0).
// sleeper drives the anti-abuse pacing pause; passing nil defaults to
// RealSleeper. The core loop never calls a global sleep function, so
// tests can substitute an immediate fake here exactly as they do for the
// retry wrapper's backoff.
func NewGachaLogsScraper(requester *RetryingRequester, url *urlfinder.ParsedGachaUrl, pageSize int, sleeper Sleeper) *GachaLogsScraper {
	if sleeper == nil {
		sleeper = RealSleeper
	}
	return &GachaLogsScraper{requester: requester, url: url, pageSize: pageSize, sleep: sleeper}
}

// send delivers n to notify, respecting cancellation: if ctx is done
// before the consumer drains the channel, send returns ctx.Err() and the
// caller must stop making further requests. A nil channel is a valid,
// silent no-op sink.
func send(ctx context.Context, notify chan<- Notify, n Notify) error {
	if notify == nil {
		return nil
	}
	select {
	case notify <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scrapes runs the full pagination loop over every mapping in order,
// returning every kept record across every gacha type. Any non-recoverable
// error from the requester aborts the whole scrape immediately; the
// caller sees whichever fragments were already delivered.
func (s *GachaLogsScraper) Scrapes(ctx context.Context, mappings []EndpointMapping, notify chan<- Notify) ([]Record, error) {
	var all []Record

	for _, mapping := range mappings {
		for _, cursor := range mapping.Cursors {
			records, err := s.scrapeOne(ctx, mapping.Endpoint, cursor, notify)
			if err != nil {
				return all, err
			}
			all = append(all, records...)
		}
	}

	if err := send(ctx, notify, NotifyFinished{}); err != nil {
		return all, err
	}
	return all, nil
}

func (s *GachaLogsScraper) scrapeOne(ctx context.Context, endpoint gamebiz.EndpointType, cursor GachaTypeCursor, notify chan<- Notify) ([]Record, error) {
	if err := send(ctx, notify, NotifyReady{GachaType: cursor.GachaType}); err != nil {
		return nil, err
	}

	var (
		kept       []Record
		endID      = "0"
		pagination = 0
	)

	for {
		if pagination > 1 && pagination%5 == 0 {
			if err := send(ctx, notify, NotifySleeping{}); err != nil {
				return kept, err
			}
			if err := s.sleep(ctx, antiAbuseSleep); err != nil {
				return kept, err
			}
		}

		pagination++
		if err := send(ctx, notify, NotifyPagination{Page: pagination}); err != nil {
			return kept, err
		}

		query := s.url.AsQueries(urlfinder.AsQueriesOptions{
			GachaType: cursor.GachaType,
			Size:      s.pageSize,
			EndID:     endID,
		})
		page, err := s.requester.Do(ctx, s.url.GameBiz, endpoint, query)
		if err != nil {
			return kept, err
		}

		if len(page.List) == 0 {
			break
		}

		endID = page.List[len(page.List)-1].ID

		pageRecords := page.List
		shouldBreak := false
		if cursor.LastEndID != "" {
			filtered := pageRecords[:0:0]
			for _, r := range pageRecords {
				if r.ID <= cursor.LastEndID {
					shouldBreak = true
					continue
				}
				filtered = append(filtered, r)
			}
			pageRecords = filtered
		}

		if err := send(ctx, notify, NotifyData{Records: pageRecords}); err != nil {
			return kept, err
		}
		kept = append(kept, pageRecords...)

		if shouldBreak {
			break
		}
	}

	if err := send(ctx, notify, NotifyCompleted{GachaType: cursor.GachaType}); err != nil {
		return kept, err
	}
	return kept, nil
}
