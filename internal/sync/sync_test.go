package sync

import "testing"

func TestPredicateMatrix(t *testing.T) {
	cases := []struct {
		state   State
		canPush bool
		canPull bool
	}{
		{StateNotConfigured, false, false},
		{StateSynced, false, false},
		{StateLocalChanges, true, false},
		{StateRemoteChanges, false, true},
		{StateDiverged, true, true},
		{StateSyncing, false, false},
		{StateConflict, false, false},
		{StateError, false, false},
	}
	for _, c := range cases {
		s := Status{State: c.state}
		if got := s.CanPush(); got != c.canPush {
			t.Errorf("%s: CanPush = %v, want %v", c.state, got, c.canPush)
		}
		if got := s.CanPull(); got != c.canPull {
			t.Errorf("%s: CanPull = %v, want %v", c.state, got, c.canPull)
		}
	}
}

func TestTracker_HappyPath(t *testing.T) {
	tr := NewTracker()
	if got := tr.Current().State; got != StateNotConfigured {
		t.Fatalf("initial state = %s", got)
	}
	tr.MarkConfigured()
	if got := tr.Current().State; got != StateSynced {
		t.Fatalf("after configure = %s", got)
	}
	tr.MarkLocalChanges()
	if got := tr.Current().State; got != StateLocalChanges {
		t.Fatalf("after local edit = %s", got)
	}
	if err := tr.BeginSync(); err != nil {
		t.Fatalf("BeginSync: %v", err)
	}
	if got := tr.Current().State; got != StateSyncing {
		t.Fatalf("during sync = %s", got)
	}
	tr.FinishSynced()
	if got := tr.Current().State; got != StateSynced {
		t.Fatalf("after sync = %s", got)
	}
}

func TestTracker_Divergence(t *testing.T) {
	tr := NewTracker()
	tr.MarkConfigured()
	tr.MarkLocalChanges()
	tr.MarkRemoteChanges()
	if got := tr.Current().State; got != StateDiverged {
		t.Fatalf("local+remote = %s, want diverged", got)
	}

	tr2 := NewTracker()
	tr2.MarkConfigured()
	tr2.MarkRemoteChanges()
	tr2.MarkLocalChanges()
	if got := tr2.Current().State; got != StateDiverged {
		t.Fatalf("remote+local = %s, want diverged", got)
	}

	if err := tr.BeginSync(); err != nil {
		t.Fatalf("BeginSync from diverged: %v", err)
	}
}

func TestTracker_FinishConflictAndError(t *testing.T) {
	tr := NewTracker()
	tr.MarkConfigured()
	tr.MarkRemoteChanges()
	_ = tr.BeginSync()
	tr.FinishConflict()
	if got := tr.Current(); got.State != StateConflict || got.CanPush() || got.CanPull() {
		t.Errorf("conflict status = %+v", got)
	}
	if err := tr.BeginSync(); err == nil {
		t.Error("BeginSync must fail from conflict")
	}

	tr.MarkConfigured()
	tr.MarkLocalChanges()
	_ = tr.BeginSync()
	tr.FinishError("remote hung up")
	got := tr.Current()
	if got.State != StateError || got.Message != "remote hung up" {
		t.Errorf("error status = %+v", got)
	}
}

func TestTracker_EditsIgnoredWhileUnconfigured(t *testing.T) {
	tr := NewTracker()
	tr.MarkLocalChanges()
	tr.MarkRemoteChanges()
	if got := tr.Current().State; got != StateNotConfigured {
		t.Errorf("state = %s, want notConfigured", got)
	}
}

func TestRegistry(t *testing.T) {
	const kind = Kind("test")
	Register(kind, func(boardDir string, opts Options) (Provider, error) {
		return nil, nil
	})
	found := false
	for _, k := range RegisteredKinds() {
		if k == kind {
			found = true
		}
	}
	if !found {
		t.Error("registered kind not listed")
	}
	if _, err := New(Kind("missing"), "/tmp", Options{}); err == nil {
		t.Error("expected error for unregistered kind")
	}
}
