package diskcache

import "github.com/distr1/gachalog/internal/gachaerr"

// Error kinds returned by this package. None are retried by callers: a
// malformed cache is a dead end, not a transient condition.
const (
	KindInvalidMagic         gachaerr.Kind = "invalid_magic"
	KindUnsupportedVersion   gachaerr.Kind = "unsupported_version"
	KindUnimplementedVersion gachaerr.Kind = "unimplemented_version"
	KindIllegalAddress       gachaerr.Kind = "illegal_address"
	KindOutOfRange           gachaerr.Kind = "out_of_range"
	KindUnsupported          gachaerr.Kind = "unsupported"
)
