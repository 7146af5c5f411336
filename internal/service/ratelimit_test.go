package service

import (
	"testing"
	"time"
)

func TestSlidingWindowLimiter(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cinco admisiones y la sexta rechazada", func(t *testing.T) {
		l := NewSlidingWindowLimiter(time.Minute, 5)
		for i := 0; i < 5; i++ {
			res := l.TryAdmit(base.Add(time.Duration(i) * time.Second))
			if !res.Admitted {
				t.Fatalf("admission %d rejected", i+1)
			}
		}
		res := l.TryAdmit(base.Add(10 * time.Second))
		if res.Admitted {
			t.Fatal("sixth admission within window must be rejected")
		}
		if res.RetryAfterSeconds <= 0 {
			t.Fatalf("retryAfterSeconds = %d, want > 0", res.RetryAfterSeconds)
		}
		// El más viejo fue en base; la ventana libera en base+60s.
		if res.RetryAfterSeconds != 50 {
			t.Fatalf("retryAfterSeconds = %d, want 50", res.RetryAfterSeconds)
		}
	})

	t.Run("tras 61 segundos vuelve a admitir", func(t *testing.T) {
		l := NewSlidingWindowLimiter(time.Minute, 5)
		for i := 0; i < 5; i++ {
			l.TryAdmit(base)
		}
		if l.TryAdmit(base.Add(time.Second)).Admitted {
			t.Fatal("expected rejection inside window")
		}
		if !l.TryAdmit(base.Add(61 * time.Second)).Admitted {
			t.Fatal("expected admission after window expired")
		}
	})

	t.Run("rechazo no consume cupo", func(t *testing.T) {
		l := NewSlidingWindowLimiter(time.Minute, 2)
		l.TryAdmit(base)
		l.TryAdmit(base)
		for i := 0; i < 10; i++ {
			if l.TryAdmit(base.Add(time.Second)).Admitted {
				t.Fatal("expected rejection")
			}
		}
		// Los rechazos no registraron timestamps: al vencer los dos primeros
		// hay cupo de nuevo.
		if !l.TryAdmit(base.Add(61 * time.Second)).Admitted {
			t.Fatal("rejections must not extend the window")
		}
	})

	t.Run("retry-after redondea hacia arriba", func(t *testing.T) {
		l := NewSlidingWindowLimiter(time.Minute, 1)
		l.TryAdmit(base)
		res := l.TryAdmit(base.Add(59*time.Second + 500*time.Millisecond))
		if res.Admitted {
			t.Fatal("expected rejection")
		}
		if res.RetryAfterSeconds != 1 {
			t.Fatalf("retryAfterSeconds = %d, want ceil to 1", res.RetryAfterSeconds)
		}
	})
}
