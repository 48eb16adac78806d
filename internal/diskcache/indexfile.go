package diskcache

import (
	"fmt"
	"io"
	"os"

	"github.com/distr1/gachalog/internal/gachaerr"
)

const (
	indexMagic      = 0xC103CAC3
	indexVersion2_0 = 0x20000
	indexVersion2_1 = 0x20001
	indexVersion3_0 = 0x30000
	indexTableSize  = 0x10000

	// indexPadBytes is the fixed-size padding plus the embedded LRU
	// structure that follows the header fields we care about: 4*52 bytes
	// of pad, then 112 bytes of LRU state, neither of which this decoder
	// exposes.
	indexPadBytes = 4*52 + 112
)

// IndexFileHeader is the consumer-visible subset of the on-disk index file
// header; TableLen is clamped to indexTableSize.
type IndexFileHeader struct {
	Magic      uint32
	Version    uint32
	NumEntries int32
	NumBytes   int32
	LastFile   int32
	ThisID     int32
	Stats      Addr
	TableLen   int32
	Crash      int32
	Experiment int32
	CreateTime uint64
}

// IndexFile is the parsed `index` file: a header plus the address table,
// with uninitialized addresses already filtered out.
type IndexFile struct {
	Header IndexFileHeader
	Table  []Addr
}

// ReadIndexFile parses an index file from r, which is read sequentially
// and exactly once.
func ReadIndexFile(r io.Reader) (*IndexFile, error) {
	br := newReader(r)

	magic, err := br.uint32()
	if err != nil {
		return nil, err
	}
	if magic != indexMagic {
		return nil, gachaerr.Newf(KindInvalidMagic, "invalid index file magic number: 0x%X (expected 0x%X)", magic, uint32(indexMagic))
	}

	version, err := br.uint32()
	if err != nil {
		return nil, err
	}
	switch version {
	case indexVersion2_0, indexVersion2_1:
		// Ok
	case indexVersion3_0:
		return nil, gachaerr.Newf(KindUnimplementedVersion, "unimplemented index file version: 0x%X (current implementation is version 2.x only)", uint32(indexVersion3_0))
	default:
		return nil, gachaerr.Newf(KindUnsupportedVersion, "unsupported index file version: 0x%X (valid: 0x%X, 0x%X)", version, uint32(indexVersion2_0), uint32(indexVersion2_1))
	}

	numEntries, err := br.int32()
	if err != nil {
		return nil, err
	}
	numBytes, err := br.int32()
	if err != nil {
		return nil, err
	}
	lastFile, err := br.int32()
	if err != nil {
		return nil, err
	}
	thisID, err := br.int32()
	if err != nil {
		return nil, err
	}
	stats, err := br.addr()
	if err != nil {
		return nil, err
	}

	tableLen, err := br.int32()
	if err != nil {
		return nil, err
	}
	if tableLen > indexTableSize {
		tableLen = indexTableSize
	}

	crash, err := br.int32()
	if err != nil {
		return nil, err
	}
	experiment, err := br.int32()
	if err != nil {
		return nil, err
	}
	createTime, err := br.uint64()
	if err != nil {
		return nil, err
	}

	if err := br.skip(indexPadBytes); err != nil {
		return nil, err
	}

	table := make([]Addr, 0, tableLen)
	for i := int32(0); i < tableLen; i++ {
		addr, err := br.addr()
		if err != nil {
			return nil, err
		}
		if addr.IsInitialized() {
			table = append(table, addr)
		}
	}

	return &IndexFile{
		Header: IndexFileHeader{
			Magic:      magic,
			Version:    version,
			NumEntries: numEntries,
			NumBytes:   numBytes,
			LastFile:   lastFile,
			ThisID:     thisID,
			Stats:      stats,
			TableLen:   tableLen,
			Crash:      crash,
			Experiment: experiment,
			CreateTime: createTime,
		},
		Table: table,
	}, nil
}

// OpenIndexFile opens and parses the index file at path.
func OpenIndexFile(path string) (*IndexFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()
	return ReadIndexFile(f)
}
