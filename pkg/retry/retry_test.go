package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryer_Success(t *testing.T) {
	config := EnableRetry(3, 100*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	fn := func(ctx context.Context) error {
		attempts++
		return nil // Success on first attempt
	}

	err = retryer.Do(context.Background(), fn)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryer_SuccessAfterRetries(t *testing.T) {
	config := EnableRetry(5, 10*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	fn := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil // Success on 3rd attempt
	}

	start := time.Now()
	err = retryer.Do(context.Background(), fn)
	duration := time.Since(start)

	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}

	// Проверяем что были задержки
	if duration < 20*time.Millisecond {
		t.Errorf("Expected delays between retries, duration was too short: %v", duration)
	}
}

func TestRetryer_MaxAttemptsExceeded(t *testing.T) {
	config := EnableRetry(3, 10*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	fn := func(ctx context.Context) error {
		attempts++
		return errors.New("persistent error")
	}

	err = retryer.Do(context.Background(), fn)
	if err == nil {
		t.Error("Expected error after max attempts")
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryer_ExponentialBackoff(t *testing.T) {
	config := EnableRetry(4, 100*time.Millisecond)
	config.BackoffStrategy = BackoffExponential
	config.BackoffMultiplier = 2.0
	config.Jitter = 0 // Отключаем jitter для предсказуемости

	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	delays := []time.Duration{}
	attempts := 0
	lastAttempt := time.Now()

	fn := func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			delays = append(delays, time.Since(lastAttempt))
		}
		lastAttempt = time.Now()
		return errors.New("error")
	}

	retryer.Do(context.Background(), fn)

	// Ожидаем задержки: 100ms, 200ms, 400ms
	if len(delays) < 2 {
		t.Fatalf("Expected at least 2 delays, got %d", len(delays))
	}

	ratio := float64(delays[1]) / float64(delays[0])
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("Expected exponential backoff ratio ~2.0, got %.2f (delays: %v, %v)", ratio, delays[0], delays[1])
	}
}

func TestRetryer_ContextCancellation(t *testing.T) {
	config := EnableRetry(10, 100*time.Millisecond)
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	fn := func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel после второй попытки
		}
		return errors.New("error")
	}

	err = retryer.Do(ctx, fn)
	if err == nil {
		t.Error("Expected context cancellation error")
	}

	if attempts > 3 {
		t.Errorf("Expected max 3 attempts with context cancellation, got %d", attempts)
	}
}

func TestRetryer_OnRetryCallback(t *testing.T) {
	callbackCalls := 0
	config := EnableRetry(3, 10*time.Millisecond)
	config.OnRetry = func(attempt int, err error, delay time.Duration) {
		callbackCalls++
	}

	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	fn := func(ctx context.Context) error {
		attempts++
		return errors.New("error")
	}

	retryer.Do(context.Background(), fn)

	// OnRetry вызывается перед каждым retry (не перед первой попыткой)
	expectedCallbacks := 2
	if callbackCalls != expectedCallbacks {
		t.Errorf("Expected %d callback calls, got %d", expectedCallbacks, callbackCalls)
	}
}

func TestRetryer_RetryableErrors(t *testing.T) {
	config := EnableRetry(3, 10*time.Millisecond)
	config.RetryableErrors = []string{"timeout", "connection refused"}

	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	// Retryable error
	attempts := 0
	fn1 := func(ctx context.Context) error {
		attempts++
		return errors.New("connection refused")
	}

	retryer.Do(context.Background(), fn1)
	if attempts != 3 {
		t.Errorf("Expected 3 retries for retryable error, got %d", attempts)
	}

	// Non-retryable error
	attempts = 0
	fn2 := func(ctx context.Context) error {
		attempts++
		return errors.New("invalid input")
	}

	retryer.Do(context.Background(), fn2)
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryer_Disabled(t *testing.T) {
	config := DefaultConfig() // disabled by default
	retryer, err := NewRetryer(config)
	if err != nil {
		t.Fatalf("Failed to create retryer: %v", err)
	}

	attempts := 0
	fn := func(ctx context.Context) error {
		attempts++
		return errors.New("error")
	}

	err = retryer.Do(context.Background(), fn)
	if err == nil {
		t.Error("Expected error when retry disabled")
	}

	if attempts != 1 {
		t.Errorf("Expected 1 attempt when retry disabled, got %d", attempts)
	}
}
