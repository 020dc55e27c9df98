package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSourcesDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestGetRegisteredSources(t *testing.T) {
	dir := writeSourcesDir(t, map[string]string{
		"demo.yaml": `
identifier: demo-http
name: Demo HTTP source
transport: http
endpoint: https://traffic.example.com/traff
pollinterval: PT2M
requesttimeout: PT30S
---
identifier: demo-queue
name: Demo queue source
transport: queue
`,
		"mock.yaml": `
identifier: demo-mock
name: Demo mock source
transport: mock
path: testdata/feed.xml
`,
		"notes.txt": "not a source file",
	})
	t.Setenv("TRAFFGO_TRAFFICSOURCES", dir)

	sources, err := GetRegisteredSources()
	if err != nil {
		t.Fatalf("GetRegisteredSources failed: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d: %v", len(sources), sources)
	}

	byIdentifier := map[string]RegisteredSource{}
	for _, source := range sources {
		byIdentifier[source.Identifier] = source
	}

	httpSource := byIdentifier["demo-http"]
	if httpSource.Transport != "http" || httpSource.Endpoint != "https://traffic.example.com/traff" {
		t.Errorf("http source = %+v", httpSource)
	}
	if got := httpSource.PollIntervalDuration(time.Minute); got != 2*time.Minute {
		t.Errorf("poll interval = %v", got)
	}
	if got := httpSource.RequestTimeoutDuration(10 * time.Second); got != 30*time.Second {
		t.Errorf("request timeout = %v", got)
	}

	if byIdentifier["demo-queue"].Transport != "queue" {
		t.Errorf("queue source = %+v", byIdentifier["demo-queue"])
	}
	if byIdentifier["demo-mock"].Path != "testdata/feed.xml" {
		t.Errorf("mock source = %+v", byIdentifier["demo-mock"])
	}
}

func TestGetRegisteredSourcesInvalid(t *testing.T) {
	dir := writeSourcesDir(t, map[string]string{
		"broken.yaml": `
identifier: broken
name: Broken source
transport: http
`,
	})
	t.Setenv("TRAFFGO_TRAFFICSOURCES", dir)

	if _, err := GetRegisteredSources(); err == nil {
		t.Error("http source without endpoint should fail validation")
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		source  RegisteredSource
		wantErr bool
	}{
		{
			name:   "http with endpoint",
			source: RegisteredSource{Identifier: "a", Transport: "http", Endpoint: "https://example.com"},
		},
		{
			name:    "http without endpoint",
			source:  RegisteredSource{Identifier: "a", Transport: "http"},
			wantErr: true,
		},
		{
			name:   "mock with path",
			source: RegisteredSource{Identifier: "a", Transport: "mock", Path: "feed.xml"},
		},
		{
			name:    "mock without path",
			source:  RegisteredSource{Identifier: "a", Transport: "mock"},
			wantErr: true,
		},
		{
			name:   "queue",
			source: RegisteredSource{Identifier: "a", Transport: "queue"},
		},
		{
			name:    "unknown transport",
			source:  RegisteredSource{Identifier: "a", Transport: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, testCase := range testCases {
		err := testCase.source.Validate()
		if testCase.wantErr && err == nil {
			t.Errorf("%s: expected an error", testCase.name)
		}
		if !testCase.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", testCase.name, err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	fallback := 42 * time.Second

	if got := parseDuration("", fallback); got != fallback {
		t.Errorf("empty duration = %v", got)
	}
	if got := parseDuration("garbage", fallback); got != fallback {
		t.Errorf("invalid duration = %v", got)
	}
	if got := parseDuration("PT90S", fallback); got != 90*time.Second {
		t.Errorf("PT90S = %v", got)
	}
	if got := parseDuration("PT1H", fallback); got != time.Hour {
		t.Errorf("PT1H = %v", got)
	}
}
