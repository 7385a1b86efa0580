// Package retry реализует повтор сетевых операций с настраиваемым
// backoff. Используется пайплайном для подключений и транзакций:
// чанковая загрузка переживает кратковременный обрыв соединения
// повтором текущего чанка, а не рестартом всего файла.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// BackoffStrategy определяет стратегию задержки между повторами
type BackoffStrategy string

const (
	// BackoffConstant - постоянная задержка
	BackoffConstant BackoffStrategy = "constant"
	// BackoffLinear - линейное увеличение задержки
	BackoffLinear BackoffStrategy = "linear"
	// BackoffExponential - экспоненциальное увеличение задержки
	BackoffExponential BackoffStrategy = "exponential"
)

// Config содержит конфигурацию retry механизма
type Config struct {
	// Enabled - включить retry механизм
	Enabled bool

	// MaxAttempts - максимальное количество попыток (включая первую)
	MaxAttempts int

	// InitialDelay - начальная задержка перед первым retry
	InitialDelay time.Duration

	// MaxDelay - максимальная задержка между попытками
	MaxDelay time.Duration

	// BackoffStrategy - стратегия увеличения задержки
	BackoffStrategy BackoffStrategy

	// BackoffMultiplier - множитель для exponential backoff (обычно 2.0)
	BackoffMultiplier float64

	// Jitter - добавлять случайность к задержке (0.0 - 1.0).
	// Помогает избежать "thundering herd" проблемы.
	Jitter float64

	// RetryableErrors - подстроки ошибок, для которых нужен retry.
	// Пустой список = retry для всех ошибок.
	RetryableErrors []string

	// OnRetry - callback перед каждым повтором
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}
	if c.BackoffStrategy != BackoffConstant &&
		c.BackoffStrategy != BackoffLinear &&
		c.BackoffStrategy != BackoffExponential {
		return fmt.Errorf("invalid backoff strategy: %s", c.BackoffStrategy)
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}
	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (retry выключен)
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		MaxAttempts:       3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffStrategy:   BackoffExponential,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
	}
}

// EnableRetry создает конфигурацию с включенным retry
func EnableRetry(maxAttempts int, initialDelay time.Duration) Config {
	config := DefaultConfig()
	config.Enabled = true
	config.MaxAttempts = maxAttempts
	config.InitialDelay = initialDelay
	return config
}

// RetryableFunc - функция, которую можно повторять
type RetryableFunc func(ctx context.Context) error

// Retryer выполняет retry логику
type Retryer struct {
	config Config
}

// NewRetryer создает новый Retryer
func NewRetryer(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	return &Retryer{config: config}, nil
}

// Do выполняет функцию с retry
func (r *Retryer) Do(ctx context.Context, fn RetryableFunc) error {
	if !r.config.Enabled {
		return fn(ctx)
	}

	var lastErr error
	attempts := 0

	for {
		attempts++

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.isRetryableError(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		if r.config.MaxAttempts > 0 && attempts >= r.config.MaxAttempts {
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, lastErr)
		}

		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		delay := r.calculateDelay(attempts)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempts, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// calculateDelay вычисляет задержку для текущей попытки
func (r *Retryer) calculateDelay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.BackoffStrategy {
	case BackoffConstant:
		delay = r.config.InitialDelay
	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		multiplier := math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)
	default:
		delay = r.config.InitialDelay
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter > 0 {
		jitter := time.Duration(float64(delay) * r.config.Jitter * (rand.Float64()*2 - 1))
		delay += jitter
		if delay < 0 {
			delay = r.config.InitialDelay
		}
	}

	return delay
}

// isRetryableError проверяет нужен ли retry для ошибки
func (r *Retryer) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if len(r.config.RetryableErrors) == 0 {
		return true
	}

	errStr := err.Error()
	for _, pattern := range r.config.RetryableErrors {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
