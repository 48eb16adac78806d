package diskcache

import (
	"fmt"
	"io"
	"os"

	"github.com/distr1/gachalog/internal/gachaerr"
)

const (
	blockMagic      = 0xC104CAC3
	blockVersion2_0 = 0x20000
	blockVersion3_0 = 0x30000
	blockHeaderSize = 8192

	// blockMaxBlocks bounds the on-disk allocation bitmap, which this
	// decoder skips without parsing: (8192-80)*8 possible blocks, one bit
	// each, packed into uint32 words below.
	blockMaxBlocks     = (blockHeaderSize - 80) * 8
	blockBitmapWords   = blockMaxBlocks / 32
	blockBitmapWordLen = 4
)

// BlockFileHeader is the consumer-visible subset of a data_N file's
// 8192-byte header.
type BlockFileHeader struct {
	Magic      uint32
	Version    uint32
	ThisFile   int16
	NextFile   int16
	EntrySize  int32
	NumEntries int32
	MaxEntries int32
	Empty      [4]int32
	Hints      [4]int32
	Updating   int32
	User       [5]int32
}

// BlockFile is a parsed data_N file: header plus the raw block data that
// follows it. The 8112-byte allocation bitmap between the two is skipped
// unread, per spec.
type BlockFile struct {
	Header BlockFileHeader
	Data   []byte
}

// ReadBlockFile parses a block file from r, reading it to completion.
func ReadBlockFile(r io.Reader) (*BlockFile, error) {
	br := newReader(r)

	magic, err := br.uint32()
	if err != nil {
		return nil, err
	}
	if magic != blockMagic {
		return nil, gachaerr.Newf(KindInvalidMagic, "invalid block file magic number: 0x%X (expected 0x%X)", magic, uint32(blockMagic))
	}

	version, err := br.uint32()
	if err != nil {
		return nil, err
	}
	switch version {
	case blockVersion2_0:
		// Ok
	case blockVersion3_0:
		return nil, gachaerr.Newf(KindUnimplementedVersion, "unimplemented block file version: 0x%X (current implementation is version 2.0 only)", uint32(blockVersion3_0))
	default:
		return nil, gachaerr.Newf(KindUnsupportedVersion, "unsupported block file version: 0x%X (valid: 0x%X)", version, uint32(blockVersion2_0))
	}

	thisFile, err := br.int16()
	if err != nil {
		return nil, err
	}
	nextFile, err := br.int16()
	if err != nil {
		return nil, err
	}
	entrySize, err := br.int32()
	if err != nil {
		return nil, err
	}
	numEntries, err := br.int32()
	if err != nil {
		return nil, err
	}
	maxEntries, err := br.int32()
	if err != nil {
		return nil, err
	}
	empty, err := br.int32n(4)
	if err != nil {
		return nil, err
	}
	hints, err := br.int32n(4)
	if err != nil {
		return nil, err
	}
	updating, err := br.int32()
	if err != nil {
		return nil, err
	}
	user, err := br.int32n(5)
	if err != nil {
		return nil, err
	}

	// Allocation bitmap: not parsed, just skipped.
	if err := br.skip(int64(blockBitmapWords) * blockBitmapWordLen); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(br.r)
	if err != nil {
		return nil, err
	}

	header := BlockFileHeader{
		Magic:      magic,
		Version:    version,
		ThisFile:   thisFile,
		NextFile:   nextFile,
		EntrySize:  entrySize,
		NumEntries: numEntries,
		MaxEntries: maxEntries,
		Updating:   updating,
	}
	copy(header.Empty[:], empty)
	copy(header.Hints[:], hints)
	copy(header.User[:], user)

	return &BlockFile{Header: header, Data: data}, nil
}

// OpenBlockFile opens and parses the block file at path.
func OpenBlockFile(path string) (*BlockFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening block file: %w", err)
	}
	defer f.Close()
	return ReadBlockFile(f)
}

// ReadData returns the bytes addr refers to within this block file. The
// returned slice aliases b.Data; callers must not retain it beyond the
// lifetime of b.
func (b *BlockFile) ReadData(addr Addr) ([]byte, error) {
	if !addr.IsInitialized() {
		return nil, gachaerr.New(KindIllegalAddress, "address is not initialized")
	}
	if !addr.IsBlockFile() {
		return nil, gachaerr.New(KindIllegalAddress, "address is not a block file address")
	}
	if addr.FileNumber() != uint32(b.Header.ThisFile) {
		return nil, gachaerr.Newf(KindIllegalAddress, "file number of the address does not match the current block file (expected %d, actual %d)", b.Header.ThisFile, addr.FileNumber())
	}

	blockSize := int(addr.BlockSize())
	numBlocks := int(addr.NumBlocks())
	offset := int(addr.StartBlock()) * blockSize
	length := blockSize * numBlocks

	if offset < 0 || length < 0 || offset+length > len(b.Data) {
		return nil, gachaerr.Newf(KindOutOfRange, "illegal address %s: data offset and length out of range (%d..%d, have %d bytes)", addr.DebugString(), offset, offset+length, len(b.Data))
	}

	return b.Data[offset : offset+length], nil
}
