package gachascraper

// Notify is the closed set of fragments a scrape run delivers to an
// observer, in the order described in spec.md §4.11/§5.
type Notify interface {
	isNotify()
}

// NotifySleeping reports the anti-abuse pacing pause between pages 5 and
// 6 (and every multiple of 5 thereafter).
type NotifySleeping struct{}

func (NotifySleeping) isNotify() {}

// NotifyReady reports the start of pagination for one gacha type.
type NotifyReady struct{ GachaType string }

func (NotifyReady) isNotify() {}

// NotifyPagination reports the 1-indexed page number about to be
// requested.
type NotifyPagination struct{ Page int }

func (NotifyPagination) isNotify() {}

// NotifyData reports the records kept from one successful page.
type NotifyData struct{ Records []Record }

func (NotifyData) isNotify() {}

// NotifyCompleted reports that one gacha type finished pagination
// cleanly.
type NotifyCompleted struct{ GachaType string }

func (NotifyCompleted) isNotify() {}

// NotifyFinished reports that the whole run (every gacha type) is done.
type NotifyFinished struct{}

func (NotifyFinished) isNotify() {}
