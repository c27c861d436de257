// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package registry

import (
	"errors"
	"strings"
	"testing"
)

// fakeInstance counts destruction hooks and style applications.
type fakeInstance struct {
	destroyed int
	styles    []any
}

func (f *fakeInstance) Destroy()             { f.destroyed++ }
func (f *fakeInstance) ApplyStyle(style any) { f.styles = append(f.styles, style) }

// fakeEngine records attached requests.
type fakeEngine struct {
	attached []Request
}

func (f *fakeEngine) AttachRequest(req Request) { f.attached = append(f.attached, req) }

// TestAddDuplicate tests that re-adding a live id is a contract violation.
func TestAddDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.Add("a", &fakeInstance{}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := r.Add("a", &fakeInstance{})
	if err == nil {
		t.Fatal("duplicate Add should fail")
	}
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("error should wrap ErrContractViolation, got %v", err)
	}
	var dup *DuplicateIDError
	if !errors.As(err, &dup) || dup.ID != "a" {
		t.Errorf("error = %v, want DuplicateIDError for id a", err)
	}
}

// TestRefcountLifecycle tests that for add followed by N retains and N+1
// releases, the destruction hook fires exactly once, after the last
// release and never earlier.
func TestRefcountLifecycle(t *testing.T) {
	const n = 3

	r := NewRegistry()
	inst := &fakeInstance{}
	if err := r.Add("face", inst); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for i := 0; i < n; i++ {
		if got := r.GetAndRetain("face"); got != inst {
			t.Fatalf("GetAndRetain returned %v, want instance", got)
		}
	}

	for i := 0; i < n; i++ {
		r.Release("face")
		if inst.destroyed != 0 {
			t.Fatalf("destroyed after release %d of %d", i+1, n+1)
		}
	}

	r.Release("face")
	if inst.destroyed != 1 {
		t.Fatalf("destroyed = %d after final release, want 1", inst.destroyed)
	}
	if got := r.GetAndRetain("face"); got != nil {
		t.Error("instance still reachable after final release")
	}
}

// TestReleaseUnknown tests that releasing an absent id is a non-fatal
// no-op.
func TestReleaseUnknown(t *testing.T) {
	r := NewRegistry()
	r.Release("ghost")
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

// TestDeleteForcesDestruction tests that Delete destroys the instance
// regardless of outstanding retains.
func TestDeleteForcesDestruction(t *testing.T) {
	r := NewRegistry()
	inst := &fakeInstance{}
	if err := r.Add("face", inst); err != nil {
		t.Fatalf("Add: %v", err)
	}
	r.GetAndRetain("face")
	r.GetAndRetain("face")

	if err := r.Delete("face"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if inst.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", inst.destroyed)
	}
	if got := r.GetAndRetain("face"); got != nil {
		t.Error("instance still reachable after delete")
	}

	err := r.Delete("face")
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("second delete error = %v, want contract violation", err)
	}
}

// TestRename tests the rename contract: old must exist, new must be
// absent, and afterward the instance is reachable only under new.
func TestRename(t *testing.T) {
	r := NewRegistry()
	inst := &fakeInstance{}
	if err := r.Add("old", inst); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Rename("missing", "x"); !errors.Is(err, ErrContractViolation) {
		t.Errorf("rename of missing id: err = %v, want contract violation", err)
	}

	other := &fakeInstance{}
	if err := r.Add("taken", other); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Rename("old", "taken"); !errors.Is(err, ErrContractViolation) {
		t.Errorf("rename onto live id: err = %v, want contract violation", err)
	}

	if err := r.Rename("old", "new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := r.GetAndRetain("old"); got != nil {
		t.Error("instance still reachable under old id")
	}
	if got := r.GetAndRetain("new"); got != inst {
		t.Errorf("GetAndRetain(new) = %v, want instance", got)
	}
}

// TestRenamePreservesRefcount tests that rename moves the entry without
// resetting its refcount.
func TestRenamePreservesRefcount(t *testing.T) {
	r := NewRegistry()
	inst := &fakeInstance{}
	if err := r.Add("old", inst); err != nil {
		t.Fatalf("Add: %v", err)
	}
	r.GetAndRetain("old")

	if err := r.Rename("old", "new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	r.Release("new")
	if inst.destroyed != 0 {
		t.Fatal("destroyed after first release; refcount was not preserved")
	}
	r.Release("new")
	if inst.destroyed != 1 {
		t.Errorf("destroyed = %d after final release, want 1", inst.destroyed)
	}
}

// TestHandleRequestLiveInstance tests that a request naming a live
// instance is handed back directly with its style applied.
func TestHandleRequestLiveInstance(t *testing.T) {
	r := NewRegistry()
	inst := &fakeInstance{}
	if err := r.Add("x", inst); err != nil {
		t.Fatalf("Add: %v", err)
	}

	style := map[string]string{"dial": "roman"}
	got, err := r.HandleRequest(Request{ID: "x", Style: style})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if got != inst {
		t.Fatalf("HandleRequest returned %v, want live instance", got)
	}
	if len(inst.styles) != 1 {
		t.Fatalf("styles applied = %d, want 1", len(inst.styles))
	}
}

// TestPendingRequestHandoff tests the scenario where a creation request
// arrives before any engine is ready: the request is stored pending, and
// the engine that later reports ready receives it exactly once.
func TestPendingRequestHandoff(t *testing.T) {
	r := NewRegistry()

	req := Request{ID: "X"}
	got, err := r.HandleRequest(req)
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if got != nil {
		t.Fatalf("HandleRequest returned %v, want nil (stored pending)", got)
	}

	eng := &fakeEngine{}
	if err := r.EngineReady(eng); err != nil {
		t.Fatalf("EngineReady: %v", err)
	}
	if len(eng.attached) != 1 || eng.attached[0].ID != "X" {
		t.Fatalf("attached = %v, want exactly the pending request", eng.attached)
	}

	// The pending slot was cleared: a second engine just waits.
	eng2 := &fakeEngine{}
	if err := r.EngineReady(eng2); err != nil {
		t.Fatalf("EngineReady after consume: %v", err)
	}
	if len(eng2.attached) != 0 {
		t.Errorf("second engine received %v, want nothing", eng2.attached)
	}
}

// TestWaitingEngineHandoff tests the converse order: an engine waits
// first and the next request is delivered to it directly.
func TestWaitingEngineHandoff(t *testing.T) {
	r := NewRegistry()

	eng := &fakeEngine{}
	if err := r.EngineReady(eng); err != nil {
		t.Fatalf("EngineReady: %v", err)
	}

	got, err := r.HandleRequest(Request{ID: "Y"})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if got != nil {
		t.Fatalf("HandleRequest returned %v, want nil (handed to engine)", got)
	}
	if len(eng.attached) != 1 || eng.attached[0].ID != "Y" {
		t.Fatalf("attached = %v, want the request", eng.attached)
	}

	// Waiting slot was cleared; the next request is stored pending, not
	// delivered again.
	if _, err := r.HandleRequest(Request{ID: "Z"}); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(eng.attached) != 1 {
		t.Errorf("engine received %d requests, want 1", len(eng.attached))
	}
}

// TestHandoffMutualExclusion tests that a second pending request or a
// second waiting engine is a contract violation.
func TestHandoffMutualExclusion(t *testing.T) {
	r := NewRegistry()
	if _, err := r.HandleRequest(Request{ID: "a"}); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if _, err := r.HandleRequest(Request{ID: "b"}); !errors.Is(err, ErrContractViolation) {
		t.Errorf("second pending request: err = %v, want contract violation", err)
	}

	r2 := NewRegistry()
	if err := r2.EngineReady(&fakeEngine{}); err != nil {
		t.Fatalf("EngineReady: %v", err)
	}
	if err := r2.EngineReady(&fakeEngine{}); !errors.Is(err, ErrContractViolation) {
		t.Errorf("second waiting engine: err = %v, want contract violation", err)
	}
}

// TestClearWaiting tests that a cleared engine receives nothing.
func TestClearWaiting(t *testing.T) {
	r := NewRegistry()
	eng := &fakeEngine{}
	if err := r.EngineReady(eng); err != nil {
		t.Fatalf("EngineReady: %v", err)
	}
	r.ClearWaiting()

	if _, err := r.HandleRequest(Request{ID: "a"}); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(eng.attached) != 0 {
		t.Errorf("cleared engine received %v", eng.attached)
	}
}

// TestNewProvisionalID tests minted ids are unique and prefixed.
func TestNewProvisionalID(t *testing.T) {
	a, b := NewProvisionalID(), NewProvisionalID()
	if !strings.HasPrefix(a, "face-") {
		t.Errorf("id %q missing face- prefix", a)
	}
	if a == b {
		t.Errorf("two minted ids collide: %q", a)
	}
}
