package service

import (
	"log/slog"

	"github.com/dom/musikkhylla/internal/config"
	"github.com/dom/musikkhylla/internal/metrics"
	"github.com/dom/musikkhylla/internal/notify"
	"github.com/dom/musikkhylla/internal/ratelimit"
	"github.com/dom/musikkhylla/internal/repository"
)

type Services struct {
	Auth   *AuthService
	Albums *AlbumService
	Tokens *TokenService
}

// Deps carries the optional collaborators. Nil fields fall back to the
// service defaults.
type Deps struct {
	Notifier notify.Notifier
	Limiter  ratelimit.Limiter
	Metrics  *metrics.Metrics
	Events   CollectionNotifier
	Logger   *slog.Logger
}

func NewServices(repos *repository.Repositories, cfg *config.Config, deps Deps) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens := NewTokenService(cfg.SecretKey, cfg.TokenTTL)

	authOpts := []AuthOption{WithAuthMetrics(deps.Metrics)}
	if deps.Notifier != nil {
		authOpts = append(authOpts, WithNotifier(deps.Notifier))
	}
	if deps.Limiter != nil {
		authOpts = append(authOpts, WithLimiter(deps.Limiter))
	}

	albumOpts := []AlbumOption{WithAlbumMetrics(deps.Metrics)}
	if deps.Events != nil {
		albumOpts = append(albumOpts, WithCollectionNotifier(deps.Events))
	}

	return &Services{
		Auth:   NewAuthService(repos, tokens, cfg, logger, authOpts...),
		Albums: NewAlbumService(repos, logger, albumOpts...),
		Tokens: tokens,
	}
}
