// Package gamebiz holds the closed identity model shared by URL parsing
// and the requester: which title, which server region, and which gacha
// log endpoint a URL or outbound request belongs to.
package gamebiz

import "github.com/distr1/gachalog/internal/gachaerr"

// Game is one of the three supported titles.
type Game int

const (
	Hk4e  Game = iota + 1 // Genshin Impact
	Hkrpg                 // Honkai: Star Rail
	Nap                   // Zenless Zone Zero
)

func (g Game) String() string {
	switch g {
	case Hk4e:
		return "hk4e"
	case Hkrpg:
		return "hkrpg"
	case Nap:
		return "nap"
	default:
		return "unknown"
	}
}

// Server distinguishes the mainland ("official") deployment from the
// global ("oversea") one.
type Server int

const (
	Official Server = iota + 1
	Oversea
)

func (s Server) String() string {
	switch s {
	case Official:
		return "official"
	case Oversea:
		return "oversea"
	default:
		return "unknown"
	}
}

// EndpointType selects among the gacha log API variants a game exposes.
// Beyond only exists for Hk4e, Collaboration only for Hkrpg.
type EndpointType int

const (
	Standard EndpointType = iota + 1
	Beyond
	Collaboration
)

func (e EndpointType) String() string {
	switch e {
	case Standard:
		return "standard"
	case Beyond:
		return "beyond"
	case Collaboration:
		return "collaboration"
	default:
		return "unknown"
	}
}

// GameBiz is the (Game, Server) pair a vendor `game_biz` query parameter
// resolves to.
type GameBiz struct {
	Game   Game
	Server Server
}

// gameBizTable is the closed mapping from the wire `game_biz` value to a
// (Game, Server) pair.
var gameBizTable = map[string]GameBiz{
	"hk4e_cn":      {Hk4e, Official},
	"hk4e_global":  {Hk4e, Oversea},
	"hkrpg_cn":     {Hkrpg, Official},
	"hkrpg_global": {Hkrpg, Oversea},
	"nap_cn":       {Nap, Official},
	"nap_global":   {Nap, Oversea},
}

// KindUnsupportedGameBiz is returned by FromBiz for any value not in the
// closed mapping.
const KindUnsupportedGameBiz gachaerr.Kind = "unsupported_game_biz"

// FromBiz resolves a raw `game_biz` query value to its (Game, Server)
// pair, or KindUnsupportedGameBiz if it is not one of the six known
// values.
func FromBiz(biz string) (GameBiz, error) {
	gb, ok := gameBizTable[biz]
	if !ok {
		return GameBiz{}, gachaerr.Newf(KindUnsupportedGameBiz, "unsupported game_biz: %q", biz)
	}
	return gb, nil
}

// KindUnsupportedEndpoint is returned by BaseURL when a (GameBiz,
// EndpointType) pair has no mapped base URL.
const KindUnsupportedEndpoint gachaerr.Kind = "unsupported_endpoint"

// baseURLTable enumerates the fixed base URL for every supported
// (Game, Server, EndpointType) triple.
var baseURLTable = map[GameBiz]map[EndpointType]string{
	{Hk4e, Official}: {
		Standard: "https://public-operation-hk4e.mihoyo.com/gacha_info/api/getGachaLog",
		Beyond:   "https://public-operation-hk4e.mihoyo.com/gacha_info/api/getBeyondGachaLog",
	},
	{Hk4e, Oversea}: {
		Standard: "https://public-operation-hk4e-sg.hoyoverse.com/gacha_info/api/getGachaLog",
		Beyond:   "https://public-operation-hk4e-sg.hoyoverse.com/gacha_info/api/getBeyondGachaLog",
	},
	{Hkrpg, Official}: {
		Standard:      "https://public-operation-hkrpg.mihoyo.com/common/gacha_record/api/getGachaLog",
		Collaboration: "https://public-operation-hkrpg.mihoyo.com/common/gacha_record/api/getLdGachaLog",
	},
	{Hkrpg, Oversea}: {
		Standard:      "https://public-operation-hkrpg-sg.hoyoverse.com/common/gacha_record/api/getGachaLog",
		Collaboration: "https://public-operation-hkrpg-sg.hoyoverse.com/common/gacha_record/api/getLdGachaLog",
	},
	{Nap, Official}: {
		Standard: "https://public-operation-nap.mihoyo.com/common/gacha_record/api/getGachaLog",
	},
	{Nap, Oversea}: {
		Standard: "https://public-operation-nap-sg.hoyoverse.com/common/gacha_record/api/getGachaLog",
	},
}

// BaseURL returns the fixed gacha log endpoint for gb and endpoint, or
// KindUnsupportedEndpoint if no such mapping exists (e.g. Beyond requested
// for Hkrpg).
func BaseURL(gb GameBiz, endpoint EndpointType) (string, error) {
	byEndpoint, ok := baseURLTable[gb]
	if !ok {
		return "", gachaerr.Newf(KindUnsupportedEndpoint, "no base URL for game=%s server=%s", gb.Game, gb.Server)
	}
	url, ok := byEndpoint[endpoint]
	if !ok {
		return "", gachaerr.Newf(KindUnsupportedEndpoint, "no %s endpoint for game=%s server=%s", endpoint, gb.Game, gb.Server)
	}
	return url, nil
}
