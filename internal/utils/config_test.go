package utils

import (
	"path"
	"testing"
)

type testConf struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

func TestLoadConfigFromFile_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	dflt := testConf{Name: "dflt", Limit: 20}

	got, err := LoadConfigFromFile(dir, "conf.json", &dflt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != dflt {
		t.Fatalf("expected default config, got: %+v", got)
	}
}

func TestLoadConfigFromFile_KeepsUserValues(t *testing.T) {
	dir := t.TempDir()
	user := testConf{Name: "mine", Limit: 4}
	if err := CreateFile(path.Join(dir, "conf.json"), &user); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	dflt := testConf{Name: "dflt", Limit: 20}
	got, err := LoadConfigFromFile(dir, "conf.json", &dflt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != user {
		t.Fatalf("expected user config to win, got: %+v", got)
	}
}

func TestLoadConfigFromFile_BackfillsNewFields(t *testing.T) {
	dir := t.TempDir()
	user := testConf{Name: "mine"}
	if err := CreateFile(path.Join(dir, "conf.json"), &user); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	dflt := testConf{Name: "dflt", Limit: 20}
	got, err := LoadConfigFromFile(dir, "conf.json", &dflt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Name != "mine" {
		t.Fatalf("expected user name to survive, got: %v", got.Name)
	}
	if got.Limit != 20 {
		t.Fatalf("expected zero field to be backfilled from default, got: %v", got.Limit)
	}

	var reread testConf
	if err := ReadAndUnmarshal(path.Join(dir, "conf.json"), &reread); err != nil {
		t.Fatalf("failed to reread config: %v", err)
	}
	if reread.Limit != 20 {
		t.Fatalf("expected backfill to be persisted, got: %+v", reread)
	}
}
