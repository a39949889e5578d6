package utils

import (
	"path"
	"testing"
)

func TestCreateFile_RoundTrip(t *testing.T) {
	p := path.Join(t.TempDir(), "conf.json")
	want := testConf{Name: "buddy", Limit: 7}
	if err := CreateFile(p, &want); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var got testConf
	if err := ReadAndUnmarshal(p, &got); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != want {
		t.Fatalf("expected: %+v, got: %+v", want, got)
	}
}

func TestReadAndUnmarshal_MissingFile(t *testing.T) {
	var got testConf
	if err := ReadAndUnmarshal(path.Join(t.TempDir(), "nope.json"), &got); err == nil {
		t.Fatal("expected error on missing file")
	}
}

func TestReadAndUnmarshal_WrongShape(t *testing.T) {
	p := path.Join(t.TempDir(), "conf.json")
	garbage := "not json"
	if err := CreateFile(p, &garbage); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	var got testConf
	if err := ReadAndUnmarshal(p, &got); err == nil {
		t.Fatal("expected error on type mismatch")
	}
}
