package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
	if id2.Compare(id1) <= 0 {
		t.Error("Generated IDs should be monotonically increasing")
	}
}

func TestNewSessionID(t *testing.T) {
	sid := NewSessionID()

	if !strings.HasPrefix(sid.String(), SessionPrefix+"_") {
		t.Errorf("ID should start with '%s_', got: %s", SessionPrefix, sid)
	}

	parts := strings.Split(sid.String(), "_")
	if len(parts) != 2 || !IsValid(parts[1]) {
		t.Errorf("ULID part should be valid: %s", sid)
	}
}

func TestNewClientID(t *testing.T) {
	cid := NewClientID()

	if !strings.HasPrefix(cid.String(), ClientPrefix+"_") {
		t.Errorf("ID should start with '%s_', got: %s", ClientPrefix, cid)
	}
	if _, err := Timestamp(cid.String()); err != nil {
		t.Errorf("Client ID should carry a timestamp: %v", err)
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	sid := NewSessionID()

	ts, err := Timestamp(sid.String())
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if ts.Before(before) {
		t.Errorf("Timestamp %v should be after %v", ts, before)
	}

	if _, err := Timestamp("sess_not-a-ulid"); err == nil {
		t.Error("Expected error for invalid ULID")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[SessionID]bool, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				sid := NewSessionID()
				mu.Lock()
				seen[sid] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}
