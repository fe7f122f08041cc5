package store

import (
	"sync"
	"time"
)

// DefaultDismissAfter — через сколько ошибка хранилища скрывается сама.
const DefaultDismissAfter = 5 * time.Second

// ErrorSource is anything exposing a dismissible error.
type ErrorSource interface {
	OnError(fn func(msg string)) (cancel func())
	ClearError()
	Err() string
}

// AutoDismiss очищает ошибку src через interval после её появления, если её не сбросили раньше.
// Новая ошибка перезапускает таймер. Возвращает функцию остановки.
func AutoDismiss(src ErrorSource, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = DefaultDismissAfter
	}
	var (
		mu    sync.Mutex
		timer *time.Timer
		last  string
	)
	cancel := src.OnError(func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		if msg == "" {
			msg = src.Err()
		}
		if msg == "" {
			if timer != nil {
				timer.Stop()
				timer = nil
			}
			last = ""
			return
		}
		if msg == last && timer != nil {
			return
		}
		last = msg
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(interval, src.ClearError)
	})
	return func() {
		cancel()
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}
}
