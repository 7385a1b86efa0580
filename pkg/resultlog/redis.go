// Package resultlog публикует итог загрузки справочника во внешнее
// хранилище состояний, чтобы оркестратор мог отслеживать прогоны
// без доступа к целевой БД.
package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rodgg/geonames-db/pkg/etl"
)

// LoadResult представляет итог загрузки, публикуемый в Redis
// после завершения прогона (успешного или с ошибкой).
//
// Redis-ключи:
//
//	SET  geonames:load:<name>:state  <JSON>  EX <ttl>  — для GET-запросов оркестратора
//	PUB  geonames:load:<name>                          — для event-driven маршрутизации
type LoadResult struct {
	Name       string            `json:"name"`
	Status     string            `json:"status"` // "success" | "failed"
	Dialect    string            `json:"dialect"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	DurationMs int64             `json:"duration_ms"`
	TableRows  map[string]int64  `json:"table_rows"`
	Checksums  map[string]string `json:"checksums"`
	TotalRows  int64             `json:"total_rows"`
	Error      *string           `json:"error,omitempty"`
}

// RedisPublisher публикует результат загрузки в Redis
type RedisPublisher struct {
	client *redis.Client
	config etl.ResultLogConfig
}

// NewRedisPublisher создает publisher на основе конфигурации
func NewRedisPublisher(config etl.ResultLogConfig) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// Publish публикует итог прогона:
//   - SET geonames:load:<name>:state <JSON> EX <ttl>  → для опроса (polling)
//   - PUBLISH geonames:load:<name> <JSON>             → для подписки (pub/sub)
//
// Вызывается независимо от результата прогона; execErr == nil
// означает успешную загрузку.
func (p *RedisPublisher) Publish(ctx context.Context, stats *etl.LoadStats, execErr error) error {
	result := LoadResult{
		Name:       p.config.Name,
		Dialect:    stats.Dialect,
		StartedAt:  stats.StartTime,
		FinishedAt: stats.EndTime,
		DurationMs: stats.Duration.Milliseconds(),
		TableRows:  stats.TableRows,
		Checksums:  stats.Checksums,
		TotalRows:  stats.TotalRows,
	}

	if execErr != nil {
		result.Status = "failed"
		errStr := execErr.Error()
		result.Error = &errStr
	} else {
		result.Status = "success"
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	stateKey := fmt.Sprintf("geonames:load:%s:state", p.config.Name)
	eventChannel := fmt.Sprintf("geonames:load:%s", p.config.Name)
	ttl := time.Duration(p.config.TTL) * time.Second

	// SET ключ с TTL — оркестратор может GET последнее состояние
	if err := p.client.Set(ctx, stateKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	// PUBLISH событие — оркестратор может SUBSCRIBE на завершения
	if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
