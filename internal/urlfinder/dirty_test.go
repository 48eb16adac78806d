package urlfinder

import (
	"testing"
	"time"
)

func TestStripToHTTP(t *testing.T) {
	tests := []struct {
		in       string
		wantOK   bool
		wantText string
	}{
		{in: "1/0/https://example.com", wantOK: true, wantText: "https://example.com"},
		{in: "https://example.com", wantOK: true, wantText: "https://example.com"},
		{in: "no url here", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := stripToHTTP(tt.in)
		if ok != tt.wantOK {
			t.Errorf("stripToHTTP(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.wantText {
			t.Errorf("stripToHTTP(%q) = %q, want %q", tt.in, got, tt.wantText)
		}
	}
}

func TestGachaURLRe(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://public-operation-hk4e.mihoyo.com/gacha_info/api/getGachaLog?authkey_ver=1&authkey=ABC", want: true},
		{in: "https://public-operation-hk4e-sg.hoyoverse.com/gacha_info/api/getGachaLog?authkey=ABC", want: true},
		{in: "https://example.com/?authkey=ABC", want: false},
		{in: "https://mihoyo.com/no/query/params", want: false},
		{in: "http://mihoyo.com/?authkey=ABC", want: false}, // not https
	}
	for _, tt := range tests {
		if got := gachaURLRe.MatchString(tt.in); got != tt.want {
			t.Errorf("gachaURLRe.MatchString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRetentionPolicy(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		policy   RetentionPolicy
		created  time.Time
		accepted bool
	}{
		{name: "all accepts old", policy: All(), created: now.Add(-30 * 24 * time.Hour), accepted: true},
		{name: "valid accepts recent", policy: Valid(), created: now.Add(-1 * time.Hour), accepted: true},
		{name: "valid rejects old", policy: Valid(), created: now.Add(-25 * time.Hour), accepted: false},
		{name: "before(d) boundary inclusive", policy: Before(2 * time.Hour), created: now.Add(-2 * time.Hour), accepted: true},
		{name: "before(d) rejects past boundary", policy: Before(2 * time.Hour), created: now.Add(-2*time.Hour - time.Second), accepted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.accepts(now, tt.created); got != tt.accepted {
				t.Errorf("accepts() = %v, want %v", got, tt.accepted)
			}
		})
	}
}

func TestParseVersionDir(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
		want   versionTuple
	}{
		{in: "1.2.3", wantOK: true, want: versionTuple{1, 2, 3, 0}},
		{in: "1.2.3.4", wantOK: true, want: versionTuple{1, 2, 3, 4}},
		{in: "garbage", wantOK: false},
		{in: "1.2", wantOK: false},
		{in: "1.2.3.4.5", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := parseVersionDir(tt.in)
		if ok != tt.wantOK {
			t.Errorf("parseVersionDir(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseVersionDir(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVersionTupleLess(t *testing.T) {
	// From spec scenario 6: among 1.2.3, 1.2.10, 1.2.3.4, 1.2.10 wins
	// because (1,2,3,4) does not exceed (1,2,10,0).
	v1, _ := parseVersionDir("1.2.3")
	v2, _ := parseVersionDir("1.2.10")
	v3, _ := parseVersionDir("1.2.3.4")

	if !v1.less(v2) {
		t.Errorf("expected 1.2.3 < 1.2.10")
	}
	if !v3.less(v2) {
		t.Errorf("expected 1.2.3.4 < 1.2.10 (build number only compares after patch)")
	}
}
