package service

import (
	"math"
	"sync"
	"time"
)

// AdmissionResult es la respuesta del gate de admisión. RetryAfterSeconds
// solo tiene sentido cuando Admitted es false.
type AdmissionResult struct {
	Admitted          bool
	RetryAfterSeconds int
}

// Admitter decide si un mensaje saliente puede enviarse ahora.
type Admitter interface {
	TryAdmit(now time.Time) AdmissionResult
}

// SlidingWindowLimiter es el gate en memoria: ventana deslizante, poda
// perezosa en cada chequeo (sin timers de fondo, un idle largo no cuesta
// nada). Es síncrono y nunca bloquea.
type SlidingWindowLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	stamps []time.Time
}

func NewSlidingWindowLimiter(window time.Duration, max int) *SlidingWindowLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &SlidingWindowLimiter{window: window, max: max}
}

func (l *SlidingWindowLimiter) TryAdmit(now time.Time) AdmissionResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.stamps[:0]
	for _, ts := range l.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.stamps = kept

	if len(l.stamps) < l.max {
		l.stamps = append(l.stamps, now)
		return AdmissionResult{Admitted: true}
	}

	retry := int(math.Ceil(l.stamps[0].Add(l.window).Sub(now).Seconds()))
	if retry < 1 {
		retry = 1
	}
	return AdmissionResult{RetryAfterSeconds: retry}
}
