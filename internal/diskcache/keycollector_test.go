package diskcache

import (
	"os"
	"path/filepath"
	"testing"
)

// writeCacheFolder assembles a minimal on-disk cache folder containing
// index, data_1 and data_2, with one entry in data_1 pointing at a long
// key stored in data_2.
func writeCacheFolder(t *testing.T, longKeyText string, creationTime uint64) string {
	t.Helper()
	dir := t.TempDir()

	// data_2: long key text padded to a block-size-36 boundary.
	const blockSize36 = 36
	numBlocks2 := (len(longKeyText) + blockSize36 - 1) / blockSize36
	if numBlocks2 == 0 {
		numBlocks2 = 1
	}
	payload2 := make([]byte, numBlocks2*blockSize36)
	copy(payload2, longKeyText)
	data2 := buildBlockFile(t, blockVersion2_0, 2, payload2)
	if err := os.WriteFile(filepath.Join(dir, DefaultBlockFile2), data2, 0644); err != nil {
		t.Fatal(err)
	}

	longKeyAddr := uint32(0x80000000) | (1 << addrFileTypeOffset) | (uint32(numBlocks2-1) << addrNumBlocksOffset) | (2 << addrFileSelectorOffset)

	// data_1: one 256-byte EntryStore record with a long key.
	entry := buildEntryStore(t, creationTime, int32(len(longKeyText)), Addr(longKeyAddr), nil)
	data1 := buildBlockFile(t, blockVersion2_0, 1, entry)
	if err := os.WriteFile(filepath.Join(dir, DefaultBlockFile1), data1, 0644); err != nil {
		t.Fatal(err)
	}

	entryAddr := uint32(0x80000000) | (2 << addrFileTypeOffset) | (1 << addrFileSelectorOffset)
	index := buildIndexFile(t, indexVersion2_0, []uint32{entryAddr})
	if err := os.WriteFile(filepath.Join(dir, DefaultIndexFile), index, 0644); err != nil {
		t.Fatal(err)
	}

	return dir
}

func TestKeyCollectorLongKey(t *testing.T) {
	longKeyText := "1/0/https://public-operation-hk4e.mihoyo.com/gacha_info/api/getGachaLog?authkey=ABC&authkey_ver=1"
	dir := writeCacheFolder(t, longKeyText, 1_000_000)

	collector, err := NewLongKeyOnlyCollector(dir)
	if err != nil {
		t.Fatalf("NewLongKeyOnlyCollector: unexpected error: %v", err)
	}

	got, err := Collect(collector, func(k Key) (Key, bool) { return k, true })
	if err != nil {
		t.Fatalf("Collect: unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if !got[0].IsLongKey {
		t.Error("expected IsLongKey = true")
	}
	if got[0].Data != longKeyText {
		t.Errorf("Data = %q, want %q", got[0].Data, longKeyText)
	}
	if got[0].Timestamp != 1-windowsEpochOffsetSeconds {
		t.Errorf("Timestamp = %d, want %d", got[0].Timestamp, 1-windowsEpochOffsetSeconds)
	}
}

func TestKeyCollectorLongKeyOnlySkipsShortKeys(t *testing.T) {
	dir := t.TempDir()

	entry := buildEntryStore(t, 0, 3, 0, []byte("abc"))
	data1 := buildBlockFile(t, blockVersion2_0, 1, entry)
	if err := os.WriteFile(filepath.Join(dir, DefaultBlockFile1), data1, 0644); err != nil {
		t.Fatal(err)
	}
	data2 := buildBlockFile(t, blockVersion2_0, 2, nil)
	if err := os.WriteFile(filepath.Join(dir, DefaultBlockFile2), data2, 0644); err != nil {
		t.Fatal(err)
	}

	entryAddr := uint32(0x80000000) | (2 << addrFileTypeOffset) | (1 << addrFileSelectorOffset)
	index := buildIndexFile(t, indexVersion2_0, []uint32{entryAddr})
	if err := os.WriteFile(filepath.Join(dir, DefaultIndexFile), index, 0644); err != nil {
		t.Fatal(err)
	}

	collector, err := NewLongKeyOnlyCollector(dir)
	if err != nil {
		t.Fatalf("NewLongKeyOnlyCollector: unexpected error: %v", err)
	}

	got, err := Collect(collector, func(k Key) (Key, bool) { return k, true })
	if err != nil {
		t.Fatalf("Collect: unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(got) = %d, want 0 (long_key_only must skip short keys)", len(got))
	}
}

func TestKeyCollectorSkipsMismatchedLongKeyFile(t *testing.T) {
	dir := t.TempDir()

	// long_key claims file number 3, but only data_2 (file number 2)
	// exists; the entry must be silently skipped, not errored.
	mismatchedAddr := uint32(0x80000000) | (1 << addrFileTypeOffset) | (3 << addrFileSelectorOffset)
	entry := buildEntryStore(t, 0, 10, Addr(mismatchedAddr), nil)
	data1 := buildBlockFile(t, blockVersion2_0, 1, entry)
	if err := os.WriteFile(filepath.Join(dir, DefaultBlockFile1), data1, 0644); err != nil {
		t.Fatal(err)
	}
	data2 := buildBlockFile(t, blockVersion2_0, 2, nil)
	if err := os.WriteFile(filepath.Join(dir, DefaultBlockFile2), data2, 0644); err != nil {
		t.Fatal(err)
	}

	entryAddr := uint32(0x80000000) | (2 << addrFileTypeOffset) | (1 << addrFileSelectorOffset)
	index := buildIndexFile(t, indexVersion2_0, []uint32{entryAddr})
	if err := os.WriteFile(filepath.Join(dir, DefaultIndexFile), index, 0644); err != nil {
		t.Fatal(err)
	}

	collector, err := NewLongKeyOnlyCollector(dir)
	if err != nil {
		t.Fatalf("NewLongKeyOnlyCollector: unexpected error: %v", err)
	}

	got, err := Collect(collector, func(k Key) (Key, bool) { return k, true })
	if err != nil {
		t.Fatalf("Collect: unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(got) = %d, want 0 (mismatched long-key file must be skipped)", len(got))
	}
}
