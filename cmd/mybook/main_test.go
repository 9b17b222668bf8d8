package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "mybook")
}

func Test_cfgDir_And_Paths(t *testing.T) {
	_ = withTmpConfig(t)
	got := cfgDir()
	base := os.Getenv("XDG_CONFIG_HOME") + "/mybook"
	if got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasPrefix(profilePath(), base) || !strings.HasSuffix(profilePath(), "profile.json") {
		t.Fatalf("profilePath unexpected: %s", profilePath())
	}
}

func Test_profile_SaveLoad(t *testing.T) {
	base := withTmpConfig(t)

	if _, err := loadProfile(); err == nil {
		t.Fatalf("expected error when profile missing")
	}
	if err := saveProfile(profile{UserID: "user-1"}); err == nil {
		t.Fatalf("non-uuid user id must be rejected")
	}
	want := profile{UserID: "11111111-2222-4333-8444-555555555555", Subscribed: true}
	if err := saveProfile(want); err != nil {
		t.Fatalf("saveProfile: %v", err)
	}
	got, err := loadProfile()
	if err != nil || got != want {
		t.Fatalf("loadProfile: %+v %v", got, err)
	}
	st, err := os.Stat(filepath.Join(base, "profile.json"))
	if err != nil {
		t.Fatalf("profile file missing: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("profile perms %v", st.Mode().Perm())
	}
}

func Test_loadProfile_Broken(t *testing.T) {
	_ = withTmpConfig(t)
	_ = os.MkdirAll(cfgDir(), 0o700)

	_ = os.WriteFile(profilePath(), []byte("{"), 0o600)
	if _, err := loadProfile(); err == nil {
		t.Fatalf("want error on broken json")
	}
	_ = os.WriteFile(profilePath(), []byte(`{"user_id":""}`), 0o600)
	if _, err := loadProfile(); err == nil {
		t.Fatalf("want error on empty user id")
	}
}

func Test_printJSON_WritesPretty(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	printJSON(map[string]any{"a": 1})
	_ = w.Close()
	out, _ := io.ReadAll(r)

	var m map[string]any
	if json.Unmarshal(out, &m) != nil || m["a"] != float64(1) {
		t.Fatalf("printJSON produced invalid json: %s", string(out))
	}
	if !bytes.Contains(out, []byte("\n")) {
		t.Fatalf("printJSON should indent")
	}
}
