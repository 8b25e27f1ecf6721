package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/service"
)

// ProfileRepository читает профили провайдеров из бд с кешем в Redis
type ProfileRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewProfileRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.ProfileRepository {
	return &ProfileRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func profileCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("profile:%s", id.String())
}

// GetByIDs возвращает профили по идентификаторам. Отсутствующих в бд профилей нет в результате.
// Ошибки кеша не фатальны: при недоступном Redis профили читаются из бд.
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProviderProfile, error) {
	profiles := make(map[uuid.UUID]models.ProviderProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	missing := ids
	if cached, err := r.getFromCache(ctx, ids); err == nil {
		for id, p := range cached {
			profiles[id] = p
		}
		missing = missingIDs(ids, cached)
	}
	if len(missing) == 0 {
		return profiles, nil
	}

	loaded, err := r.getFromDB(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, p := range loaded {
		profiles[id] = p
	}
	// кеш лишь ускоряет чтение, ошибку записи игнорируем
	_ = r.setCache(ctx, loaded)

	return profiles, nil
}

func (r *ProfileRepository) getFromDB(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProviderProfile, error) {
	query := `
		SELECT
			id,
			COALESCE(first_name, ''),
			COALESCE(phone, ''),
			COALESCE(professional_title, ''),
			COALESCE(email, '')
		FROM profiles
		WHERE id = ANY($1::uuid[]);
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[uuid.UUID]models.ProviderProfile, len(ids))
	for rows.Next() {
		var p models.ProviderProfile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.Phone, &p.ProfessionalTitle, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan provider profile row: %w", err)
		}
		profiles[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in GetByIDs: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) getFromCache(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProviderProfile, error) {
	if r.redisClient == nil || r.cacheTTL <= 0 {
		return nil, errors.New("profile cache disabled")
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileCacheKey(id)
	}

	vals, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles from cache: %w", err)
	}
	return decodeCachedProfiles(ids, vals), nil
}

func (r *ProfileRepository) setCache(ctx context.Context, profiles map[uuid.UUID]models.ProviderProfile) error {
	if r.redisClient == nil || r.cacheTTL <= 0 || len(profiles) == 0 {
		return nil
	}
	pipe := r.redisClient.Pipeline()
	for id, p := range profiles {
		val, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal profile for cache: %w", err)
		}
		pipe.Set(ctx, profileCacheKey(id), val, r.cacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set profiles in cache: %w", err)
	}
	return nil
}

// decodeCachedProfiles разбирает ответ MGET; промахи и битые значения пропускаются
func decodeCachedProfiles(ids []uuid.UUID, vals []interface{}) map[uuid.UUID]models.ProviderProfile {
	profiles := make(map[uuid.UUID]models.ProviderProfile, len(ids))
	for i, v := range vals {
		if i >= len(ids) {
			break
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		var p models.ProviderProfile
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			continue
		}
		profiles[ids[i]] = p
	}
	return profiles
}

func missingIDs(ids []uuid.UUID, found map[uuid.UUID]models.ProviderProfile) []uuid.UUID {
	missing := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
