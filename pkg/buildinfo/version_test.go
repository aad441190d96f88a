package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet_Ldflags(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)
	Version, Commit, Date = "v1.2.3", "abc123", "2024-02-01T00:00:00Z"

	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc123" || info.Date != "2024-02-01T00:00:00Z" {
		t.Errorf("Get() = %+v, ldflags values not kept", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "v1.0.0", Commit: "abc", Date: "today", GoVersion: "go1.24"}, "v1.0.0 (commit abc, built today, go1.24)"},
		{Info{Version: "dev", GoVersion: "go1.24"}, "dev (commit unknown, built unknown, go1.24)"},
		{Info{Version: "dev", Commit: "abc", Modified: true, GoVersion: "go1.24"}, "dev (commit abc-dirty, built unknown, go1.24)"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestShortRev(t *testing.T) {
	if got := shortRev("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortRev() = %q", got)
	}
	if got := shortRev("abc"); got != "abc" {
		t.Errorf("shortRev() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if tmpl := Template(); !strings.HasPrefix(tmpl, "{{.Name}} ") {
		t.Errorf("Template() = %q", tmpl)
	}
}
