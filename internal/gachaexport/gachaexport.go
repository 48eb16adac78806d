// Package gachaexport serializes scraped gacha log records into the
// UIGF/SRGF-shaped {info, list} JSON envelope, optionally gzip-compressed
// for on-disk storage.
//
// This is the "one line" of the UIGF/SRGF contract spec.md §6 asks for:
// a stable export shape, not the richer account-management and versioning
// machinery the original tooling builds around it.
package gachaexport

import (
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/distr1/gachalog/internal/gachaerr"
	"github.com/distr1/gachalog/internal/gachascraper"
)

// KindEncode is returned when marshaling the export envelope fails.
const KindEncode gachaerr.Kind = "gachaexport.encode"

// Info is the export envelope's metadata header, following the UIGF/SRGF
// convention of a uid/lang/region/export-timestamp block preceding the
// record list.
type Info struct {
	Uid         string `json:"uid"`
	Lang        string `json:"lang"`
	Region      string `json:"region"`
	ExportApp   string `json:"export_app"`
	ExportTime  string `json:"export_time"`
	RecordCount int    `json:"record_count"`
}

// Item is one exported pull, shaped after the original's UIGF item schema.
type Item struct {
	ID        string `json:"id"`
	GachaType uint32 `json:"gacha_type"`
	ItemID    uint32 `json:"item_id,omitempty"`
	Count     uint32 `json:"count"`
	Time      string `json:"time"`
	Name      string `json:"name"`
	ItemType  string `json:"item_type"`
	RankType  uint32 `json:"rank_type"`
}

// Envelope is the full exported document: a metadata header plus the flat
// record list.
type Envelope struct {
	Info Info   `json:"info"`
	List []Item `json:"list"`
}

// Build converts scraped records plus export metadata into an Envelope.
// exportTime and exportApp are supplied by the caller (this package never
// reads the clock itself, keeping it deterministic and testable).
func Build(records []gachascraper.Record, uid, lang, region, exportApp, exportTime string) Envelope {
	items := make([]Item, len(records))
	for i, r := range records {
		var itemID uint32
		if r.ItemID != nil {
			itemID = *r.ItemID
		}
		items[i] = Item{
			ID:        r.ID,
			GachaType: r.GachaType,
			ItemID:    itemID,
			Count:     r.Count,
			Time:      r.Time.Format("2006-01-02 15:04:05"),
			Name:      r.ItemName,
			ItemType:  r.ItemType,
			RankType:  r.RankType,
		}
	}
	return Envelope{
		Info: Info{
			Uid:         uid,
			Lang:        lang,
			Region:      region,
			ExportApp:   exportApp,
			ExportTime:  exportTime,
			RecordCount: len(items),
		},
		List: items,
	}
}

// WriteJSON writes env as indented JSON to w.
func WriteJSON(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return gachaerr.Wrap(KindEncode, "encoding export envelope", err)
	}
	return nil
}

// WriteGzip writes env as gzip-compressed JSON to w.
func WriteGzip(w io.Writer, env Envelope) error {
	gz := gzip.NewWriter(w)
	if err := WriteJSON(gz, env); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return gachaerr.Wrap(KindEncode, "closing gzip writer", err)
	}
	return nil
}
