package diskcache

import (
	"fmt"
	"path/filepath"
)

const (
	// DefaultIndexFile, DefaultBlockFile1 and DefaultBlockFile2 are the
	// fixed file names every cache folder is expected to contain.
	DefaultIndexFile  = "index"
	DefaultBlockFile1 = "data_1"
	DefaultBlockFile2 = "data_2"

	// windowsEpochOffsetSeconds is the number of seconds between the
	// Windows FILETIME epoch (1601-01-01 UTC) and the Unix epoch.
	windowsEpochOffsetSeconds = 11_644_473_600
)

// Key is what the collector hands to a visitor for every retained cache
// entry.
type Key struct {
	Addr      Addr
	Timestamp int64 // Unix seconds; may be negative for CreationTime == 0
	IsLongKey bool
	Data      string
}

// KeyCollector orchestrates the index file and both block files over one
// cache folder.
type KeyCollector struct {
	indexFile   *IndexFile
	blockFile1  *BlockFile
	blockFile2  *BlockFile
	longKeyOnly bool
}

// NewKeyCollector opens the index and both block files under dataFolder. If
// longKeyOnly is set, short-key entries are skipped entirely by Collect.
func NewKeyCollector(dataFolder string, longKeyOnly bool) (*KeyCollector, error) {
	indexFile, err := OpenIndexFile(filepath.Join(dataFolder, DefaultIndexFile))
	if err != nil {
		return nil, err
	}

	blockFile1, err := OpenBlockFile(filepath.Join(dataFolder, DefaultBlockFile1))
	if err != nil {
		return nil, err
	}

	blockFile2, err := OpenBlockFile(filepath.Join(dataFolder, DefaultBlockFile2))
	if err != nil {
		return nil, err
	}

	return &KeyCollector{
		indexFile:   indexFile,
		blockFile1:  blockFile1,
		blockFile2:  blockFile2,
		longKeyOnly: longKeyOnly,
	}, nil
}

// NewLongKeyOnlyCollector is a convenience wrapper for the common case of
// extracting only the long-key entries a gacha URL would be stored under.
func NewLongKeyOnlyCollector(dataFolder string) (*KeyCollector, error) {
	return NewKeyCollector(dataFolder, true)
}

// Collect walks the index table, reading each entry's key text and handing
// it to visit. visit returns (result, true) to keep a record or (_, false)
// to drop it. I/O or format errors abort the whole walk; no entry is ever
// reported twice.
func Collect[R any](c *KeyCollector, visit func(Key) (R, bool)) ([]R, error) {
	var results []R

	for _, addr := range c.indexFile.Table {
		data, err := c.blockFile1.ReadData(addr)
		if err != nil {
			return nil, err
		}

		entry, err := ReadEntryStore(data)
		if err != nil {
			return nil, err
		}

		isLongKey := entry.HasLongKey()

		var keyText string
		switch {
		case isLongKey:
			// The long key may point at a block file other than data_2 in
			// a corrupted cache (e.g. data_3); silently skip those rather
			// than erroring out.
			// https://github.com/lgou2w/HoYo.Gacha/issues/15
			if entry.LongKey.FileNumber() != uint32(c.blockFile2.Header.ThisFile) {
				continue
			}
			keyText, err = entry.ReadLongKey(c.blockFile2)
			if err != nil {
				return nil, err
			}
		case !c.longKeyOnly:
			keyText, err = entry.ReadKey()
			if err != nil {
				return nil, err
			}
		default:
			continue
		}

		// Convert the Windows-FILETIME-derived microsecond timebase to a
		// Unix timestamp. See entry_impl.cc / time.h in Chromium.
		timestamp := int64(entry.CreationTime/1_000_000) - windowsEpochOffsetSeconds

		if result, ok := visit(Key{
			Addr:      addr,
			Timestamp: timestamp,
			IsLongKey: isLongKey,
			Data:      keyText,
		}); ok {
			results = append(results, result)
		}
	}

	return results, nil
}

// String satisfies fmt.Stringer for diagnostic logging.
func (c *KeyCollector) String() string {
	return fmt.Sprintf("KeyCollector{entries=%d, long_key_only=%v}", len(c.indexFile.Table), c.longKeyOnly)
}
