// Package settings: almacenes clave-valor de los datos de la empresa (Redis o archivo JSON).
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appsettings "github.com/jhoicas/invoice-manager/internal/application/settings"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// DefaultKey clave bajo la que se guarda el JSON de ajustes.
const DefaultKey = "companySettings"

var _ appsettings.Store = (*RedisStore)(nil)

// RedisStore guarda los ajustes como un único valor JSON.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// NewRedisStore construye el almacén. key vacío usa DefaultKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Load devuelve nil, nil si la clave no existe.
func (s *RedisStore) Load(ctx context.Context) (*entity.CompanySettings, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", s.key, err)
	}
	var out entity.CompanySettings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("redis: decodificar %s: %w", s.key, err)
	}
	return &out, nil
}

// Save reemplaza el valor completo.
func (s *RedisStore) Save(ctx context.Context, v entity.CompanySettings) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: serializar ajustes: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", s.key, err)
	}
	return nil
}
