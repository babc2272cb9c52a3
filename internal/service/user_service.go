package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// Directory reads users from the identity directory.
type Directory interface {
	SearchUsers(ctx context.Context, prefix string) ([]domain.User, error)
	GroupMembers(ctx context.Context, groupID string) ([]domain.User, error)
}

// UserService serves directory lookups and the per-user conversation registry.
type UserService struct {
	directory Directory
	configs   repository.UserConfigurationRepository
	cache     *redis.Client
	keys      persistence.Keyspace
	groupID   string
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Directory      Directory
	UserConfigRepo repository.UserConfigurationRepository
	Cache          *redis.Client
	CacheKeys      persistence.Keyspace
	GroupID        string
	CacheTTL       time.Duration
	Logger         *zap.Logger
}

// NewUserService constructs the service. A nil cache disables member caching.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		directory: deps.Directory,
		configs:   deps.UserConfigRepo,
		cache:     deps.Cache,
		keys:      deps.CacheKeys,
		groupID:   deps.GroupID,
		cacheTTL:  deps.CacheTTL,
		logger:    logger,
	}
}

// SearchUsers finds users by display name prefix. A blank query returns nothing.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.User{}, nil
	}
	users, err := s.directory.SearchUsers(ctx, query)
	if err != nil {
		return nil, transportError(err)
	}
	return users, nil
}

func (s *UserService) membersKey() string {
	return s.keys.Key("groupmembers", s.groupID)
}

// GroupMembers lists the configured responder group, served from Redis when cached.
func (s *UserService) GroupMembers(ctx context.Context) ([]domain.User, error) {
	if s.groupID == "" {
		return nil, apperrors.NewValidationError("no responder group configured", nil)
	}
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, s.membersKey()).Bytes()
		if err == nil {
			var users []domain.User
			if json.Unmarshal(cached, &users) == nil {
				return users, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("group member cache read failed", zap.Error(err))
		}
	}

	users, err := s.directory.GroupMembers(ctx, s.groupID)
	if err != nil {
		return nil, transportError(err)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(users); err == nil {
			if err := s.cache.Set(ctx, s.membersKey(), payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("group member cache write failed", zap.Error(err))
			}
		}
	}
	return users, nil
}

// SaveUserConfiguration records where a user's personal chat with the bot lives.
func (s *UserService) SaveUserConfiguration(ctx context.Context, cfg *domain.UserConfiguration) error {
	if cfg.RowKey == "" || cfg.ConversationID == "" {
		return apperrors.NewValidationError("user id and conversation id required", nil)
	}
	return s.configs.Add(ctx, cfg)
}

// GetUserConfiguration returns repository.ErrNotFound when the user never installed the bot.
func (s *UserService) GetUserConfiguration(ctx context.Context, aadObjectID string) (*domain.UserConfiguration, error) {
	return s.configs.Get(ctx, aadObjectID)
}
