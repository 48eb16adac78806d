package gachascraper

import (
	"fmt"

	"github.com/distr1/gachalog/internal/gachaerr"
)

// Error kinds returned by this package.
const (
	// KindUnsupportedEndpoint means no base URL is mapped for the
	// requested (game_biz, endpoint_type) pair.
	KindUnsupportedEndpoint gachaerr.Kind = "unsupported_endpoint"
	// KindTransport wraps a network/IO failure from the HTTP client.
	KindTransport gachaerr.Kind = "transport"
	// KindAuthkeyTimeout means the vendor rejected the authkey as expired.
	KindAuthkeyTimeout gachaerr.Kind = "authkey_timeout"
	// KindVisitTooFrequently means the vendor is rate-limiting this
	// authkey; the only error kind C10 retries on.
	KindVisitTooFrequently gachaerr.Kind = "visit_too_frequently"
	// KindUnexpectedResponse carries a vendor retcode/message this package
	// doesn't otherwise classify.
	KindUnexpectedResponse gachaerr.Kind = "unexpected_response"
	// KindReachedMaxAttempts means every retry attempt hit
	// KindVisitTooFrequently and none remained.
	KindReachedMaxAttempts gachaerr.Kind = "reached_max_attempts"
)

// UnexpectedResponseError carries the vendor retcode and message for a
// response this package could not otherwise classify.
type UnexpectedResponseError struct {
	Retcode int32
	Message string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected vendor response: retcode=%d message=%s", e.Retcode, e.Message)
}

func (e *UnexpectedResponseError) Kind() gachaerr.Kind { return KindUnexpectedResponse }
