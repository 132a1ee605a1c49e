package storage

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := InitSchema(db); err != nil {
		t.Fatal(err)
	}
	return NewStore(db)
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	changed, err := s.Save("rates", []byte(`{"10Y":4.05}`))
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("first save must report changed")
	}

	payload, updatedAt, err := s.Load("rates", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != `{"10Y":4.05}` {
		t.Fatalf("payload = %s", payload)
	}
	if updatedAt.IsZero() {
		t.Fatal("updatedAt is zero")
	}
}

func TestSaveDetectsChange(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Save("rates", []byte(`a`)); err != nil {
		t.Fatal(err)
	}
	changed, err := s.Save("rates", []byte(`a`))
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("identical payload reported as changed")
	}
	changed, err = s.Save("rates", []byte(`b`))
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("new payload not reported as changed")
	}
}

func TestLoadMissingAndStale(t *testing.T) {
	s := newTestStore(t)

	payload, _, err := s.Load("nothing", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if payload != nil {
		t.Fatal("missing snapshot returned payload")
	}

	if _, err := s.Save("rates", []byte(`a`)); err != nil {
		t.Fatal(err)
	}
	payload, _, err = s.Load("rates", 0)
	if err != nil {
		t.Fatal(err)
	}
	if payload != nil {
		t.Fatal("stale snapshot served")
	}
}

func TestChangedFlags(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Save("rates", []byte(`a`)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save("macro", []byte(`m`)); err != nil {
		t.Fatal(err)
	}

	flags, err := s.ChangedFlags()
	if err != nil {
		t.Fatal(err)
	}
	if len(flags) != 2 {
		t.Fatalf("flags = %v", flags)
	}

	if err := s.ClearChanged(); err != nil {
		t.Fatal(err)
	}
	flags, err = s.ChangedFlags()
	if err != nil {
		t.Fatal(err)
	}
	if len(flags) != 0 {
		t.Fatalf("flags after clear = %v", flags)
	}

	// An unchanged re-save must not raise the flag again.
	if _, err := s.Save("rates", []byte(`a`)); err != nil {
		t.Fatal(err)
	}
	flags, _ = s.ChangedFlags()
	if len(flags) != 0 {
		t.Fatalf("flags after identical save = %v", flags)
	}
}
