package utils

import (
	"errors"
	"testing"
)

var errFlaky = errors.New("flaky")

func TestRetryOnceRecovers(t *testing.T) {
	calls := 0
	err := RetryOnce(func() error {
		calls++
		if calls == 1 {
			return errFlaky
		}
		return nil
	}, func(error) bool { return true })
	if err != nil {
		t.Fatalf("expected success on retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryOnceGivesUp(t *testing.T) {
	calls := 0
	err := RetryOnce(func() error {
		calls++
		return errFlaky
	}, func(error) bool { return true })
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected flaky error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", calls)
	}
}

func TestRetryOnceSkipsPermanentErrors(t *testing.T) {
	calls := 0
	_ = RetryOnce(func() error {
		calls++
		return errFlaky
	}, func(error) bool { return false })
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
