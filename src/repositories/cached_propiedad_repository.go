package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"casasapi/src/domain/entities"
	"casasapi/src/infra/redis"

	"github.com/karlseguin/ccache/v3"
)

const listCacheKey = "propiedades:list"

// PropiedadStore é o contrato de persistência usado pelos serviços.
type PropiedadStore interface {
	Create(ctx context.Context, propiedad entities.Propiedad) (int64, error)
	Update(ctx context.Context, propiedad entities.Propiedad) (bool, error)
	FindByID(ctx context.Context, id int64) (entities.Propiedad, error)
	FindAll(ctx context.Context) ([]entities.Propiedad, error)
	Delete(ctx context.Context, id int64) error
}

// CachedPropiedadRepository coloca dois níveis de cache na frente das leituras:
// ccache local com TTL curto e redis compartilhado entre instâncias.
// Escritas invalidam os dois níveis antes de retornar.
type CachedPropiedadRepository struct {
	logger      *slog.Logger
	store       PropiedadStore
	localCache  *ccache.Cache[[]byte]
	localTTL    time.Duration
	redisClient *redis.RedisClient

	mu          sync.Mutex
	generations map[string]uint64
}

// redisClient pode ser nil: nesse caso só o nível local é usado.
func NewCachedPropiedadRepository(
	logger *slog.Logger,
	store PropiedadStore,
	redisClient *redis.RedisClient,
	localTTL time.Duration,
) *CachedPropiedadRepository {
	return &CachedPropiedadRepository{
		logger:      logger,
		store:       store,
		localCache:  ccache.New(ccache.Configure[[]byte]().MaxSize(1000)),
		localTTL:    localTTL,
		redisClient: redisClient,
		generations: map[string]uint64{},
	}
}

func (r *CachedPropiedadRepository) Create(ctx context.Context, propiedad entities.Propiedad) (int64, error) {
	id, err := r.store.Create(ctx, propiedad)
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, listCacheKey)
	return id, nil
}

func (r *CachedPropiedadRepository) Update(ctx context.Context, propiedad entities.Propiedad) (bool, error) {
	found, err := r.store.Update(ctx, propiedad)
	if err != nil {
		return false, err
	}

	r.invalidate(ctx, listCacheKey, idCacheKey(propiedad.ID))
	return found, nil
}

func (r *CachedPropiedadRepository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, listCacheKey, idCacheKey(id))
	return nil
}

func (r *CachedPropiedadRepository) FindByID(ctx context.Context, id int64) (entities.Propiedad, error) {
	key := idCacheKey(id)

	var cached entities.Propiedad
	if r.getFromCache(ctx, key, &cached) {
		return cached, nil
	}

	version := r.readVersion(ctx, key)
	propiedad, err := r.store.FindByID(ctx, id)
	if err != nil {
		return entities.Propiedad{}, err
	}

	r.setInCache(ctx, key, version, propiedad)
	return propiedad, nil
}

func (r *CachedPropiedadRepository) FindAll(ctx context.Context) ([]entities.Propiedad, error) {
	var cached []entities.Propiedad
	if r.getFromCache(ctx, listCacheKey, &cached) {
		return cached, nil
	}

	version := r.readVersion(ctx, listCacheKey)
	propiedades, err := r.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	r.setInCache(ctx, listCacheKey, version, propiedades)
	return propiedades, nil
}

func idCacheKey(id int64) string {
	return fmt.Sprintf("propiedades:id:%d", id)
}

// cacheVersion guarda as gerações de uma chave no momento em que a leitura começou.
// Uma invalidação no meio do caminho muda a geração e a gravação é descartada.
type cacheVersion struct {
	local    uint64
	remote   int64
	remoteOK bool
}

func (r *CachedPropiedadRepository) readVersion(ctx context.Context, key string) cacheVersion {
	version := cacheVersion{local: r.localGeneration(key)}
	if r.redisClient == nil {
		return version
	}

	remote, err := r.redisClient.Generation(ctx, key)
	if err != nil {
		r.logger.Warn("Cache generation error", "key", key, "error", err)
		return version
	}
	version.remote = remote
	version.remoteOK = true
	return version
}

func (r *CachedPropiedadRepository) localGeneration(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[key]
}

// setLocal só grava se a geração local ainda é a mesma; o lock cobre a checagem e o Set.
func (r *CachedPropiedadRepository) setLocal(key string, generation uint64, data []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generations[key] != generation {
		return false
	}
	r.localCache.Set(key, data, r.localTTL)
	return true
}

func (r *CachedPropiedadRepository) getFromCache(ctx context.Context, key string, target any) bool {
	if item := r.localCache.Get(key); item != nil && !item.Expired() {
		if err := json.Unmarshal(item.Value(), target); err == nil {
			r.logger.Debug("Cache HIT (local)", "key", key)
			return true
		}
	}

	if r.redisClient == nil {
		return false
	}

	generation := r.localGeneration(key)
	cachedJSON, found, err := r.redisClient.GetKey(ctx, key)
	if err != nil {
		// Erro de cache não derruba a leitura, seguimos para o PostgreSQL
		r.logger.Warn("Cache error", "key", key, "error", err)
		return false
	}
	if !found {
		r.logger.Debug("Cache MISS", "key", key)
		return false
	}

	if err := json.Unmarshal([]byte(cachedJSON), target); err != nil {
		r.logger.Warn("Failed to unmarshal cached data", "key", key, "error", err)
		return false
	}

	r.setLocal(key, generation, []byte(cachedJSON))
	r.logger.Debug("Cache HIT (redis)", "key", key)
	return true
}

func (r *CachedPropiedadRepository) setInCache(ctx context.Context, key string, version cacheVersion, value any) {
	dataJSON, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("Failed to marshal cache data", "key", key, "error", err)
		return
	}

	if !r.setLocal(key, version.local, dataJSON) {
		r.logger.Debug("Cache write skipped, key invalidated during read", "key", key)
		return
	}

	if r.redisClient == nil || !version.remoteOK {
		return
	}

	stored, err := r.redisClient.SetKeyIfGeneration(ctx, key, string(dataJSON), version.remote)
	if err != nil {
		r.logger.Warn("Failed to set cache", "key", key, "error", err)
		return
	}
	if !stored {
		r.logger.Debug("Cache write skipped, key invalidated during read", "key", key)
	}
}

func (r *CachedPropiedadRepository) invalidate(ctx context.Context, keys ...string) {
	r.mu.Lock()
	for _, key := range keys {
		r.generations[key]++
		r.localCache.Delete(key)
	}
	r.mu.Unlock()

	if r.redisClient == nil {
		return
	}

	if err := r.redisClient.InvalidateKeys(ctx, keys); err != nil {
		r.logger.Error("Failed to invalidate cache", "keys", keys, "error", err)
	}
}
