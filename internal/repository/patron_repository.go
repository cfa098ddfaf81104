package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/segyhp/circulation-engine/internal/domain"
	customError "github.com/segyhp/circulation-engine/pkg/errors"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type patronRepository struct {
	db *sqlx.DB
}

func NewPatronRepository(db *sqlx.DB) PatronRepository {
	return &patronRepository{db: db}
}

func (r *patronRepository) GetPreference(ctx context.Context, patronID string) (*domain.PatronPreference, error) {
	query := `
		SELECT patron_id, keep_history
		FROM patron_preferences
		WHERE patron_id = $1
	`

	var pref domain.PatronPreference
	err := r.db.GetContext(ctx, &pref, query, patronID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferenceNotFound
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return &pref, nil
}

// cachedPatronRepository keeps keep_history flags in Redis in front of
// another PatronRepository. Cache failures fall through to the store.
//
// Only keep_history=true is cached. A stale true delays anonymization until
// the patron's loans pass the maximum retention; a stale false would
// anonymize a patron who has asked to keep their history, so false is always
// read from the store.
type cachedPatronRepository struct {
	next  PatronRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedPatronRepository(next PatronRepository, redisClient *redis.Client, ttl time.Duration) PatronRepository {
	if ttl <= 0 || redisClient == nil {
		return next
	}
	return &cachedPatronRepository{
		next:  next,
		redis: redisClient,
		ttl:   ttl,
	}
}

func patronCacheKey(patronID string) string {
	return fmt.Sprintf("patron:%s:keep_history", patronID)
}

func (r *cachedPatronRepository) GetPreference(ctx context.Context, patronID string) (*domain.PatronPreference, error) {
	key := patronCacheKey(patronID)

	cached, err := r.redis.Get(ctx, key).Result()
	if err == nil {
		if keep, parseErr := strconv.ParseBool(cached); parseErr == nil && keep {
			return &domain.PatronPreference{PatronID: patronID, KeepHistory: true}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("patron cache read failed for %s: %v", patronID, customError.WrapCacheError(err))
	}

	pref, err := r.next.GetPreference(ctx, patronID)
	if err != nil {
		return nil, err
	}

	if !pref.KeepHistory {
		return pref, nil
	}

	if err := r.redis.Set(ctx, key, strconv.FormatBool(pref.KeepHistory), r.ttl).Err(); err != nil {
		log.Printf("patron cache write failed for %s: %v", patronID, customError.WrapCacheError(err))
	}
	return pref, nil
}
