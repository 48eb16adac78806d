package gachascraper

import (
	"encoding/json"
	"strconv"
	"time"

	"golang.org/x/xerrors"
)

const recordTimeLayout = "2006-01-02 15:04:05"

// Record is the normalized, per-pull gacha log entry. The several JSON
// shapes the vendor API returns for different games all decode into this
// one type.
type Record struct {
	ID        string
	UID       uint32
	GachaType uint32
	GachaID   *uint32
	RankType  uint32
	Count     uint32
	Time      time.Time // local-naive, timezone carried separately by the caller
	Lang      *string
	ItemName  string
	ItemType  string
	ItemID    *uint32
}

// numericString decodes a JSON value that may arrive as either a string or
// a number into an int64, treating an empty string as absent.
type numericString struct {
	value   int64
	present bool
}

func (n *numericString) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		n.present = false
	case string:
		if v == "" {
			n.present = false
			return nil
		}
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return xerrors.Errorf("numeric field %q: %w", v, err)
		}
		n.value, n.present = parsed, true
	case float64:
		n.value, n.present = int64(v), true
	default:
		return xerrors.Errorf("unexpected JSON type %T for numeric field", raw)
	}
	return nil
}

func (n numericString) uint32Ptr() *uint32 {
	if !n.present {
		return nil
	}
	v := uint32(n.value)
	return &v
}

// wireRecord mirrors the several vendor JSON record shapes, accepting
// either field name where they alias: name/item_name, gacha_type/
// op_gacha_type.
type wireRecord struct {
	ID          string        `json:"id"`
	UID         numericString `json:"uid"`
	GachaType   numericString `json:"gacha_type"`
	OpGachaType numericString `json:"op_gacha_type"`
	GachaID     numericString `json:"gacha_id"`
	RankType    numericString `json:"rank_type"`
	Count       numericString `json:"count"`
	Time        string        `json:"time"`
	Lang        *string       `json:"lang"`
	Name        string        `json:"name"`
	ItemName    string        `json:"item_name"`
	ItemType    string        `json:"item_type"`
	ItemID      numericString `json:"item_id"`
}

// UnmarshalJSON decodes one vendor record, resolving field aliases and
// numeric-as-string encodings into Record.
func (r *Record) UnmarshalJSON(b []byte) error {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return xerrors.Errorf("decoding gacha record: %w", err)
	}

	gachaType := w.GachaType
	if !gachaType.present {
		gachaType = w.OpGachaType
	}

	itemName := w.ItemName
	if itemName == "" {
		itemName = w.Name
	}

	count := uint32(1)
	if w.Count.present {
		count = uint32(w.Count.value)
	}

	t, err := time.ParseInLocation(recordTimeLayout, w.Time, time.Local)
	if err != nil {
		return xerrors.Errorf("parsing record time %q: %w", w.Time, err)
	}

	*r = Record{
		ID:        w.ID,
		UID:       uint32(w.UID.value),
		GachaType: uint32(gachaType.value),
		GachaID:   w.GachaID.uint32Ptr(),
		RankType:  uint32(w.RankType.value),
		Count:     count,
		Time:      t,
		Lang:      w.Lang,
		ItemName:  itemName,
		ItemType:  w.ItemType,
		ItemID:    w.ItemID.uint32Ptr(),
	}
	return nil
}

// Equal reports whether two records are the same pull, compared only by
// ID per spec: every other field is metadata about that one pull.
func (r Record) Equal(other Record) bool {
	return r.ID == other.ID
}
