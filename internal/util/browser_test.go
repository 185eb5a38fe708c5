package util

import (
	"errors"
	"runtime"
	"testing"
)

func TestBrowserCommands(t *testing.T) {
	t.Parallel()

	url := "http://localhost:20262"
	cases := map[string]string{
		"windows": "rundll32",
		"darwin":  "open",
		"linux":   "xdg-open",
		"freebsd": "xdg-open",
	}
	for goos, first := range cases {
		cmds := browserCommands(goos, url)
		if len(cmds) == 0 || cmds[0][0] != first {
			t.Fatalf("%s: commands=%v", goos, cmds)
		}
		for _, c := range cmds {
			if c[len(c)-1] != url {
				t.Fatalf("%s: url should be the last argument: %v", goos, c)
			}
		}
	}
}

func TestOpenBrowser_Fallback(t *testing.T) {
	if len(browserCommands(runtime.GOOS, "")) < 2 {
		t.Skip("no fallback launcher on " + runtime.GOOS)
	}
	orig := startCommand
	t.Cleanup(func() { startCommand = orig })

	var tried []string
	startCommand = func(name string, _ ...string) error {
		tried = append(tried, name)
		if len(tried) < 2 {
			return errors.New("not found")
		}
		return nil
	}
	if err := OpenBrowser("http://localhost"); err != nil {
		t.Fatalf("OpenBrowser failed: %v", err)
	}
	if len(tried) != 2 {
		t.Fatalf("tried=%v", tried)
	}

	tried = nil
	startCommand = func(name string, _ ...string) error {
		tried = append(tried, name)
		return errors.New("not found")
	}
	if err := OpenBrowser("http://localhost"); err == nil {
		t.Fatalf("expected error when every launcher fails")
	}
}
