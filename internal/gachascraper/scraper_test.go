package gachascraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/distr1/gachalog/internal/gachaerr"
	"github.com/distr1/gachalog/internal/gamebiz"
	"github.com/distr1/gachalog/internal/urlfinder"
)

func mustParseGachaURL(t *testing.T) *urlfinder.ParsedGachaUrl {
	t.Helper()
	u := "https://public-operation-hk4e.mihoyo.com/gacha_info/api/getGachaLog?" +
		"authkey_ver=1&sign_type=2&authkey=ABC&game_biz=hk4e_cn&region=cn_gf01&lang=en"
	p, err := urlfinder.ParseGachaURL(u)
	if err != nil {
		t.Fatalf("ParseGachaURL: unexpected error: %v", err)
	}
	return p
}

func pageBody(ids []string, done bool) string {
	if done {
		return `{"retcode":0,"message":"OK","data":{"list":[],"region":"cn_gf01"}}`
	}
	var list string
	for i, id := range ids {
		if i > 0 {
			list += ","
		}
		list += fmt.Sprintf(`{"id":"%s","uid":"1","gacha_type":"1","rank_type":"3","time":"2026-01-01 00:00:00","item_name":"x","item_type":"y"}`, id)
	}
	return fmt.Sprintf(`{"retcode":0,"message":"OK","data":{"list":[%s],"region":"cn_gf01"}}`, list)
}

func newScraper(t *testing.T, handler http.HandlerFunc) (*GachaLogsScraper, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	requester := &Requester{
		Client: server.Client(),
		ResolveBaseURL: func(gamebiz.GameBiz, gamebiz.EndpointType) (string, error) {
			return server.URL, nil
		},
	}
	rr := &RetryingRequester{Requester: requester, Config: DefaultRetryConfig(), Sleep: noopSleeper}
	scraper := NewGachaLogsScraper(rr, mustParseGachaURL(t), 20, noopSleeper)
	return scraper, server.Close
}

// TestScraperHappyPathSinglePage is scenario 1 from spec.md §8.
func TestScraperHappyPathSinglePage(t *testing.T) {
	var calls int32
	scraper, closeFn := newScraper(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.Write([]byte(pageBody([]string{"1", "2", "3"}, false)))
			return
		}
		w.Write([]byte(pageBody(nil, true)))
	})
	defer closeFn()

	notify := make(chan Notify, 1)
	var seq []Notify
	done := make(chan struct{})
	go func() {
		for n := range notify {
			seq = append(seq, n)
		}
		close(done)
	}()

	records, err := scraper.Scrapes(context.Background(), []EndpointMapping{
		{Endpoint: gamebiz.Standard, Cursors: []GachaTypeCursor{{GachaType: "1"}}},
	}, notify)
	close(notify)
	<-done

	if err != nil {
		t.Fatalf("Scrapes: unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	wantKinds := []string{"Ready", "Pagination", "Data", "Pagination", "Completed", "Finished"}
	if len(seq) != len(wantKinds) {
		t.Fatalf("notify sequence length = %d, want %d: %+v", len(seq), len(wantKinds), seq)
	}
	for i, n := range seq {
		if notifyKindName(n) != wantKinds[i] {
			t.Errorf("notify[%d] = %s, want %s", i, notifyKindName(n), wantKinds[i])
		}
	}
}

// TestScraperAntiAbusePacing is scenario 2 from spec.md §8: 12 total
// pages (11 carrying data, the 12th empty and terminating), with exactly
// one Sleeping fragment between pages 5-6 and 10-11, for a total of 12
// Pagination fragments.
func TestScraperAntiAbusePacing(t *testing.T) {
	var calls int32
	scraper, closeFn := newScraper(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 11 {
			w.Write([]byte(pageBody([]string{fmt.Sprintf("%d", n)}, false)))
			return
		}
		w.Write([]byte(pageBody(nil, true)))
	})
	defer closeFn()

	notify := make(chan Notify, 1)
	var seq []Notify
	done := make(chan struct{})
	go func() {
		for n := range notify {
			seq = append(seq, n)
		}
		close(done)
	}()

	_, err := scraper.Scrapes(context.Background(), []EndpointMapping{
		{Endpoint: gamebiz.Standard, Cursors: []GachaTypeCursor{{GachaType: "1"}}},
	}, notify)
	close(notify)
	<-done

	if err != nil {
		t.Fatalf("Scrapes: unexpected error: %v", err)
	}

	var sleeping, pagination int
	for _, n := range seq {
		switch n.(type) {
		case NotifySleeping:
			sleeping++
		case NotifyPagination:
			pagination++
		}
	}
	if sleeping != 2 {
		t.Errorf("Sleeping fragments = %d, want 2", sleeping)
	}
	if pagination != 12 {
		t.Errorf("Pagination fragments = %d, want 12", pagination)
	}
}

// TestScraperRateLimitRecovery is scenario 3 from spec.md §8.
func TestScraperRateLimitRecovery(t *testing.T) {
	var calls int32
	scraper, closeFn := newScraper(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			w.Write([]byte(`{"retcode":-110,"message":"visit too frequently","data":null}`))
		case 2:
			w.Write([]byte(`{"retcode":-110,"message":"visit too frequently","data":null}`))
		case 3:
			w.Write([]byte(pageBody([]string{"1"}, false)))
		default:
			w.Write([]byte(pageBody(nil, true)))
		}
	})
	defer closeFn()
	scraper.requester.Sleep = noopSleeper

	records, err := scraper.Scrapes(context.Background(), []EndpointMapping{
		{Endpoint: gamebiz.Standard, Cursors: []GachaTypeCursor{{GachaType: "1"}}},
	}, nil)
	if err != nil {
		t.Fatalf("Scrapes: unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Errorf("total outbound requests = %d, want 4 (3 on page 1, 1 on page 2)", got)
	}
}

// TestScraperAuthkeyTimeoutAborts is scenario 4 from spec.md §8.
func TestScraperAuthkeyTimeoutAborts(t *testing.T) {
	scraper, closeFn := newScraper(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retcode":-101,"message":"authkey invalid","data":null}`))
	})
	defer closeFn()

	notify := make(chan Notify, 1)
	var seq []Notify
	done := make(chan struct{})
	go func() {
		for n := range notify {
			seq = append(seq, n)
		}
		close(done)
	}()

	_, err := scraper.Scrapes(context.Background(), []EndpointMapping{
		{Endpoint: gamebiz.Standard, Cursors: []GachaTypeCursor{{GachaType: "1"}}},
	}, notify)
	close(notify)
	<-done

	if err == nil {
		t.Fatal("expected AuthkeyTimeout error")
	}
	if kind, ok := gachaerr.KindOf(err); !ok || kind != KindAuthkeyTimeout {
		t.Errorf("got kind %v, want %v", kind, KindAuthkeyTimeout)
	}
	for _, n := range seq {
		if _, ok := n.(NotifyCompleted); ok {
			t.Error("must not see Completed after an aborting error")
		}
		if _, ok := n.(NotifyFinished); ok {
			t.Error("must not see Finished after an aborting error")
		}
	}
}

func notifyKindName(n Notify) string {
	switch n.(type) {
	case NotifyReady:
		return "Ready"
	case NotifySleeping:
		return "Sleeping"
	case NotifyPagination:
		return "Pagination"
	case NotifyData:
		return "Data"
	case NotifyCompleted:
		return "Completed"
	case NotifyFinished:
		return "Finished"
	default:
		return "?"
	}
}

