// Package diskcache decodes the Google Chromium "Simple Cache" block-file
// disk cache (format 2.0/2.1) that the game clients' embedded WebView
// writes during an in-game gacha-history session.
//
// The format is little-endian throughout. This package is read-only: it
// never writes to the cache, and it rejects format 3.0 explicitly rather
// than attempting to decode it.
//
// References:
//   - https://www.chromium.org/developers/design-documents/network-stack/disk-cache/
//   - https://github.com/chromium/chromium/blob/main/net/disk_cache/blockfile/disk_format.h
package diskcache
