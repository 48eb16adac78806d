package gachascraper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/distr1/gachalog/internal/gachaerr"
	"github.com/distr1/gachalog/internal/gamebiz"
)

// DefaultTimeout is the per-request timeout a Requester uses when none is
// configured.
const DefaultTimeout = 10 * time.Second

// Requester issues one GET per call against the gacha log endpoint
// resolved from a (GameBiz, EndpointType) pair.
type Requester struct {
	Client  *http.Client
	Timeout time.Duration

	// ResolveBaseURL overrides the fixed base-URL table, defaulting to
	// gamebiz.BaseURL. Tests substitute an httptest server here.
	ResolveBaseURL func(gamebiz.GameBiz, gamebiz.EndpointType) (string, error)
}

// NewRequester returns a Requester using http.DefaultClient and
// DefaultTimeout.
func NewRequester() *Requester {
	return &Requester{Client: http.DefaultClient, Timeout: DefaultTimeout}
}

func (r *Requester) resolveBaseURL(gb gamebiz.GameBiz, endpoint gamebiz.EndpointType) (string, error) {
	if r.ResolveBaseURL != nil {
		return r.ResolveBaseURL(gb, endpoint)
	}
	return gamebiz.BaseURL(gb, endpoint)
}

type vendorEnvelope struct {
	Retcode int32  `json:"retcode"`
	Message string `json:"message"`
	Data    *struct {
		List   []Record `json:"list"`
		Region string   `json:"region"`
	} `json:"data"`
}

// VendorPage is one decoded page of gacha log records.
type VendorPage struct {
	List   []Record
	Region string
}

func (r *Requester) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return http.DefaultClient
}

func (r *Requester) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}

// Do issues one GET against the endpoint mapped from (gb, endpoint),
// attaching query as the URL's query string, and classifies the result
// per spec.md §4.9.
func (r *Requester) Do(ctx context.Context, gb gamebiz.GameBiz, endpoint gamebiz.EndpointType, query url.Values) (*VendorPage, error) {
	base, err := r.resolveBaseURL(gb, endpoint)
	if err != nil {
		return nil, gachaerr.Wrap(KindUnsupportedEndpoint, "resolving base url", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+query.Encode(), nil)
	if err != nil {
		return nil, gachaerr.Wrap(KindTransport, "building request", err)
	}

	resp, err := r.client().Do(req)
	if err != nil {
		return nil, gachaerr.Wrap(KindTransport, "performing request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gachaerr.Wrap(KindTransport, "reading response body", err)
	}

	var envelope vendorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, gachaerr.Wrap(KindTransport, "decoding response envelope", err)
	}

	if err := classify(envelope.Retcode, envelope.Message); err != nil {
		return nil, err
	}

	page := &VendorPage{}
	if envelope.Data != nil {
		page.List = envelope.Data.List
		page.Region = envelope.Data.Region
	}
	return page, nil
}

// classify maps a vendor retcode/message pair to a typed error, or nil on
// success.
func classify(retcode int32, message string) error {
	lower := strings.ToLower(message)

	switch {
	case retcode == 0:
		return nil
	case retcode == -101 || strings.Contains(lower, "authkey") || strings.Contains(lower, "auth key"):
		return gachaerr.Newf(KindAuthkeyTimeout, "authkey timeout: retcode=%d message=%s", retcode, message)
	case retcode == -110 || strings.Contains(lower, "frequently") || strings.Contains(lower, "visit too frequently"):
		return gachaerr.Newf(KindVisitTooFrequently, "visit too frequently: retcode=%d message=%s", retcode, message)
	default:
		return &UnexpectedResponseError{Retcode: retcode, Message: message}
	}
}
