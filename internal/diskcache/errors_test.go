package diskcache

import "github.com/distr1/gachalog/internal/gachaerr"

func kindOfErr(err error) (gachaerr.Kind, bool) {
	return gachaerr.KindOf(err)
}
