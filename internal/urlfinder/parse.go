package urlfinder

import (
	"net/url"
	"strconv"

	"github.com/distr1/gachalog/internal/gachaerr"
	"github.com/distr1/gachalog/internal/gamebiz"
)

const (
	// KindInvalidURL is returned when the candidate text does not even
	// parse as a URL.
	KindInvalidURL gachaerr.Kind = "invalid_url"
	// KindRequiredParam is returned when a required query parameter is
	// missing.
	KindRequiredParam gachaerr.Kind = "required_param"
)

// requiredParams lists every query parameter ParseGachaURL demands.
var requiredParams = []string{"authkey_ver", "sign_type", "authkey", "game_biz", "region", "lang"}

// ParsedGachaUrl is a validated view over a dirty candidate URL: every
// required query parameter is present and the game/server identity has
// been resolved.
type ParsedGachaUrl struct {
	GameBiz    gamebiz.GameBiz
	Region     string
	Lang       string
	AuthKey    string
	AuthKeyVer string
	SignType   string
	Uid        uint32 // 0 if absent
	raw        url.Values
}

// ParseGachaURL parses raw (typically a DirtyGachaUrl.Value) into a
// ParsedGachaUrl, validating every required query parameter and resolving
// game_biz to a (Game, Server) pair.
func ParseGachaURL(raw string) (*ParsedGachaUrl, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, gachaerr.Wrap(KindInvalidURL, "parsing candidate gacha url", err)
	}

	q := u.Query()
	for _, name := range requiredParams {
		if q.Get(name) == "" {
			return nil, gachaerr.Newf(KindRequiredParam, "missing required query parameter %q", name)
		}
	}

	gb, err := gamebiz.FromBiz(q.Get("game_biz"))
	if err != nil {
		return nil, err
	}

	var uid uint32
	if raw := q.Get("uid"); raw != "" {
		if n, err := strconv.ParseUint(raw, 10, 32); err == nil {
			uid = uint32(n)
		}
	}

	return &ParsedGachaUrl{
		GameBiz:    gb,
		Region:     q.Get("region"),
		Lang:       q.Get("lang"),
		AuthKey:    q.Get("authkey"),
		AuthKeyVer: q.Get("authkey_ver"),
		SignType:   q.Get("sign_type"),
		Uid:        uid,
		raw:        q,
	}, nil
}

// AsQueriesOptions parametrizes AsQueries for one outbound page request.
type AsQueriesOptions struct {
	GachaType string
	Size      int    // defaults to 20 when zero
	EndID     string // cursor; defaults to "0" when empty
}

// gameSpecificSynonyms returns the extra vendor-specific parameter names
// that must carry the same value as gacha_type for this game.
func gameSpecificSynonyms(g gamebiz.Game) []string {
	switch g {
	case gamebiz.Nap:
		return []string{"real_gacha_type", "init_log_gacha_base_type"}
	default:
		return nil
	}
}

// AsQueries builds the canonical query set for one outbound gacha log page
// request, passing through the authenticated parameters and adding the
// pagination parameters requested by opts.
func (p *ParsedGachaUrl) AsQueries(opts AsQueriesOptions) url.Values {
	size := opts.Size
	if size == 0 {
		size = 20
	}
	endID := opts.EndID
	if endID == "" {
		endID = "0"
	}

	q := url.Values{}
	q.Set("authkey_ver", p.AuthKeyVer)
	q.Set("sign_type", p.SignType)
	q.Set("authkey", p.AuthKey)
	q.Set("lang", p.Lang)
	q.Set("game_biz", p.raw.Get("game_biz"))
	q.Set("region", p.Region)
	q.Set("gacha_type", opts.GachaType)
	q.Set("page", "1")
	q.Set("size", strconv.Itoa(size))
	q.Set("end_id", endID)

	for _, synonym := range gameSpecificSynonyms(p.GameBiz.Game) {
		q.Set(synonym, opts.GachaType)
	}

	return q
}
