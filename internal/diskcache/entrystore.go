package diskcache

import (
	"bytes"

	"github.com/distr1/gachalog/internal/gachaerr"
)

// entryKeySize is the inline key buffer size: 256-byte entry minus the 24
// fixed 4-byte fields that precede it.
const entryKeySize = 256 - 24*4 // 160

// EntryStore is one decoded 256-byte cache entry record.
type EntryStore struct {
	Hash         uint32
	Next         Addr
	RankingsNode Addr
	ReuseCount   int32
	RefetchCount int32
	State        int32
	CreationTime uint64 // microseconds since 1601-01-01 UTC
	KeyLen       int32
	LongKey      Addr
	DataSize     [4]Addr
	DataAddr     [4]Addr
	Flags        uint32
	Pad          [4]int32
	SelfHash     uint32
	Key          [entryKeySize]byte
}

// ReadEntryStore parses a 256-byte entry store from r.
func ReadEntryStore(r []byte) (*EntryStore, error) {
	br := newReader(bytes.NewReader(r))

	hash, err := br.uint32()
	if err != nil {
		return nil, err
	}
	next, err := br.addr()
	if err != nil {
		return nil, err
	}
	rankingsNode, err := br.addr()
	if err != nil {
		return nil, err
	}
	reuseCount, err := br.int32()
	if err != nil {
		return nil, err
	}
	refetchCount, err := br.int32()
	if err != nil {
		return nil, err
	}
	state, err := br.int32()
	if err != nil {
		return nil, err
	}
	creationTime, err := br.uint64()
	if err != nil {
		return nil, err
	}
	keyLen, err := br.int32()
	if err != nil {
		return nil, err
	}
	longKey, err := br.addr()
	if err != nil {
		return nil, err
	}
	dataSize, err := br.addrn(4)
	if err != nil {
		return nil, err
	}
	dataAddr, err := br.addrn(4)
	if err != nil {
		return nil, err
	}
	flags, err := br.uint32()
	if err != nil {
		return nil, err
	}
	pad, err := br.int32n(4)
	if err != nil {
		return nil, err
	}
	selfHash, err := br.uint32()
	if err != nil {
		return nil, err
	}
	key, err := br.bytes(entryKeySize)
	if err != nil {
		return nil, err
	}

	e := &EntryStore{
		Hash:         hash,
		Next:         next,
		RankingsNode: rankingsNode,
		ReuseCount:   reuseCount,
		RefetchCount: refetchCount,
		State:        state,
		CreationTime: creationTime,
		KeyLen:       keyLen,
		LongKey:      longKey,
		Flags:        flags,
		SelfHash:     selfHash,
	}
	copy(e.DataSize[:], dataSize)
	copy(e.DataAddr[:], dataAddr)
	copy(e.Pad[:], pad)
	copy(e.Key[:], key)
	return e, nil
}

// HasLongKey reports whether the key is stored indirectly in another block
// file rather than inline in Key.
func (e *EntryStore) HasLongKey() bool {
	return e.LongKey.IsInitialized()
}

// ReadKey decodes the inline key. KeyLen greater than the inline buffer
// size is truncated to the buffer, not rejected, matching the on-disk
// format's own tolerance for short-key entries with an oversized length.
func (e *EntryStore) ReadKey() (string, error) {
	if e.HasLongKey() {
		return "", gachaerr.Newf(KindUnsupported, "entry store has a long key, requires another block file: %s", e.LongKey.DebugString())
	}

	n := int(e.KeyLen)
	if n < 0 || n > entryKeySize {
		n = entryKeySize
	}
	return lossyUTF8(e.Key[:n]), nil
}

// ReadLongKey decodes the indirect key stored in blockFile. The returned
// string borrows nothing from e; it is a fresh copy decoded from
// blockFile's buffer.
func (e *EntryStore) ReadLongKey(blockFile *BlockFile) (string, error) {
	if !e.HasLongKey() {
		return "", gachaerr.New(KindUnsupported, "entry store does not have a long key")
	}

	data, err := blockFile.ReadData(e.LongKey)
	if err != nil {
		return "", err
	}

	n := int(e.KeyLen)
	if n < 0 || n > len(data) {
		return "", gachaerr.Newf(KindOutOfRange, "long key length %d exceeds block data of %d bytes", n, len(data))
	}
	return lossyUTF8(data[:n]), nil
}
