package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_AllowsUpToMax(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow("1.2.3.4", now); !ok {
			t.Fatalf("Allow() call %d = false, want true", i)
		}
	}
	if ok, _ := l.Allow("1.2.3.4", now); ok {
		t.Fatal("Allow() call 4 = true, want false once over budget")
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	l := New(1, 10*time.Millisecond)
	defer l.Stop()

	now := time.Now()
	if ok, _ := l.Allow("key", now); !ok {
		t.Fatal("first Allow() = false, want true")
	}
	if ok, _ := l.Allow("key", now); ok {
		t.Fatal("second immediate Allow() = true, want false")
	}
	if ok, _ := l.Allow("key", now.Add(11*time.Millisecond)); !ok {
		t.Fatal("Allow() after window elapsed = false, want true")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	now := time.Now()
	if ok, _ := l.Allow("a", now); !ok {
		t.Fatal("Allow(a) = false, want true")
	}
	if ok, _ := l.Allow("b", now); !ok {
		t.Fatal("Allow(b) = false, want true")
	}
}

func TestLimiter_RetryAfterReflectsOldestHit(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	now := time.Now()
	if ok, _ := l.Allow("key", now); !ok {
		t.Fatal("first Allow() = false, want true")
	}

	later := now.Add(20 * time.Second)
	ok, retryAfter := l.Allow("key", later)
	if ok {
		t.Fatal("second Allow() within window = true, want false")
	}
	want := 40 * time.Second // the oldest hit ages out at now+1m, 40s after "later"
	if retryAfter != want {
		t.Errorf("retryAfter = %v, want %v", retryAfter, want)
	}
}
