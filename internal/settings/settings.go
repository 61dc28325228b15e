// Package settings persists UI preferences such as the colour theme and
// whether the welcome dialog has been shown.
//
// Values are read from the database once at startup (Load) and written
// through on every change (Set). Reads are served from an LRU cache.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/factchecker/misinfo-detector/internal/database"
	"github.com/factchecker/misinfo-detector/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

const (
	KeyTheme       = "theme"
	KeyWelcomeSeen = "welcome_seen"
)

var (
	ErrUnknownKey   = errors.New("unknown setting")
	ErrInvalidValue = errors.New("invalid setting value")
)

// Store is the get/set contract consumed by the HTTP layer.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type definition struct {
	def     string
	allowed []string
}

var definitions = map[string]definition{
	KeyTheme:       {def: "light", allowed: []string{"light", "dark"}},
	KeyWelcomeSeen: {def: "false", allowed: []string{"true", "false"}},
}

// Keys returns the known setting keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(definitions))
	for k := range definitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Service is a write-through cached Store backed by the database.
type Service struct {
	db    database.Store
	cache *lru.Cache[string, string]
	now   func() time.Time
}

// NewService creates a settings service. Call Load before serving.
func NewService(db database.Store, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = len(definitions)
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings cache: %w", err)
	}
	return &Service{db: db, cache: cache, now: time.Now}, nil
}

// Load reads all persisted settings into the cache. Stale or unknown
// entries are skipped so the defaults apply.
func (s *Service) Load(ctx context.Context) error {
	stored, err := s.db.ListSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	for _, st := range stored {
		if err := validate(st.Key, st.Value); err != nil {
			log.Warn().Err(err).Str("key", st.Key).Msg("Ignoring stored setting")
			continue
		}
		s.cache.Add(st.Key, st.Value)
	}
	log.Debug().Int("count", s.cache.Len()).Msg("Settings loaded")
	return nil
}

// Get returns the value for key, or its default when unset.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	def, ok := definitions[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	st, err := s.db.GetSetting(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	value := def.def
	if st != nil && validate(key, st.Value) == nil {
		value = st.Value
	}
	s.cache.Add(key, value)
	return value, nil
}

// Set validates and persists value, then updates the cache.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}
	err := s.db.PutSetting(ctx, &models.Setting{Key: key, Value: value, UpdatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	s.cache.Add(key, value)
	return nil
}

// All returns every known setting with defaults filled in.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(definitions))
	for _, k := range Keys() {
		v, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func validate(key, value string) error {
	def, ok := definitions[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	for _, a := range def.allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%q (allowed: %v)", ErrInvalidValue, key, value, def.allowed)
}
