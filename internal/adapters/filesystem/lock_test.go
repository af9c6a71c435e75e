package filesystem

import "testing"

func TestLockerTryLock(t *testing.T) {
	locker := NewLocker(t.TempDir())

	release, ok, err := locker.TryLock("/media/studio")
	if err != nil || !ok {
		t.Fatalf("expected first lock to succeed, got ok=%v err=%v", ok, err)
	}

	if _, ok, err := NewLocker(locker.dir).TryLock("/media/studio"); err != nil || ok {
		t.Fatalf("expected contended lock to fail fast, got ok=%v err=%v", ok, err)
	}

	other, ok, err := locker.TryLock("/media/other")
	if err != nil || !ok {
		t.Fatalf("expected a different root to lock independently, got ok=%v err=%v", ok, err)
	}
	defer other()

	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	again, ok, err := locker.TryLock("/media/studio")
	if err != nil || !ok {
		t.Fatalf("expected lock after release, got ok=%v err=%v", ok, err)
	}
	_ = again()
}
