package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}
	t.Setenv("RESUME_MATCHER_TEST_SECRET", " from-env ")

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "file wins", src: Source{File: path, Value: "inline", Env: "RESUME_MATCHER_TEST_SECRET"}, want: "from-file"},
		{name: "value over env", src: Source{Value: " inline ", Env: "RESUME_MATCHER_TEST_SECRET"}, want: "inline"},
		{name: "env", src: Source{Env: "RESUME_MATCHER_TEST_SECRET"}, want: "from-env"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(tc.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Load() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte(" \n"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "missing file", src: Source{Name: "gemini api key", File: filepath.Join(dir, "nope")}, want: "reading gemini api key"},
		{name: "empty file", src: Source{File: empty}, want: "is empty"},
		{name: "unset env", src: Source{Name: "token", Env: "RESUME_MATCHER_UNSET_SECRET"}, want: "$RESUME_MATCHER_UNSET_SECRET"},
		{name: "nothing", src: Source{}, want: "secret is not configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to contain %q, got %v", tc.want, err)
			}
		})
	}
}
