package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dom/musikkhylla/internal/config"
	"github.com/dom/musikkhylla/internal/domain"
	"github.com/dom/musikkhylla/internal/metrics"
	"github.com/dom/musikkhylla/internal/notify"
	"github.com/dom/musikkhylla/internal/otp"
	"github.com/dom/musikkhylla/internal/ratelimit"
	"github.com/dom/musikkhylla/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const loginCodeSentMessage = "Login code sent to your email"

type CodeGenerator interface {
	Generate() (string, error)
}

type AuthService struct {
	repos    *repository.Repositories
	tokens   *TokenService
	codes    CodeGenerator
	notifier notify.Notifier
	limiter  ratelimit.Limiter
	metrics  *metrics.Metrics
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

type AuthOption func(*AuthService)

func WithCodeGenerator(g CodeGenerator) AuthOption {
	return func(s *AuthService) { s.codes = g }
}

func WithNotifier(n notify.Notifier) AuthOption {
	return func(s *AuthService) { s.notifier = n }
}

// WithLimiter enables per-email throttling of code requests.
func WithLimiter(l ratelimit.Limiter) AuthOption {
	return func(s *AuthService) { s.limiter = l }
}

func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(s *AuthService) { s.metrics = m }
}

func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(repos *repository.Repositories, tokens *TokenService, cfg *config.Config, logger *slog.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		repos:    repos,
		tokens:   tokens,
		codes:    otp.NewGenerator(),
		notifier: notify.NewLogNotifier(logger, cfg.LoginCodeTTL),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type LoginCodeResult struct {
	Message string
}

type VerifyResult struct {
	Token string
	User  *domain.User
}

// RequestLoginCode finds or creates the user for email, invalidates their
// outstanding codes and issues a new one. All writes share one transaction.
// The code itself only leaves through the notifier.
func (s *AuthService) RequestLoginCode(ctx context.Context, email string) (*LoginCodeResult, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		s.metrics.CodeRequested("invalid")
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "code request throttle unavailable", "error", err)
		case !allowed:
			s.metrics.CodeRequested("throttled")
			return nil, domain.ErrTooManyRequests
		}
	}

	var code string
	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		now := s.now()

		user, err := repos.User.GetByEmail(ctx, email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &domain.User{ID: uuid.New(), Email: email, CreatedAt: now}
			if err := repos.User.Create(ctx, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("find user: %w", err)
		}

		if _, err := repos.LoginCode.InvalidateUnused(ctx, user.ID); err != nil {
			return fmt.Errorf("invalidate codes: %w", err)
		}

		code, err = s.codes.Generate()
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}

		if err := repos.LoginCode.Create(ctx, domain.NewLoginCode(user.ID, code, now, s.cfg.LoginCodeTTL)); err != nil {
			return fmt.Errorf("store code: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.CodeRequested("error")
		return nil, internalError(ctx, s.logger, "auth.RequestLoginCode", err)
	}

	if err := s.notifier.Deliver(ctx, email, code); err != nil {
		s.metrics.CodeRequested("delivery_failed")
		reportError(ctx, s.logger, "auth.RequestLoginCode.deliver", err)
		return nil, domain.ErrDeliveryFailed
	}

	s.metrics.CodeRequested("sent")
	return &LoginCodeResult{Message: loginCodeSentMessage}, nil
}

// VerifyLoginCode consumes a valid code and mints a session token. Marking the
// code used, recording the login and minting happen in one transaction, so a
// failure leaves the code unconsumed.
func (s *AuthService) VerifyLoginCode(ctx context.Context, email, code string) (*VerifyResult, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		s.metrics.CodeVerified("invalid")
		return nil, err
	}
	if code == "" {
		s.metrics.CodeVerified("invalid")
		return nil, domain.ErrCodeRequired
	}

	var result *VerifyResult
	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		user, err := repos.User.GetByEmail(ctx, email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}

		loginCode, err := repos.LoginCode.FindUnused(ctx, user.ID, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvalidCode
		}
		if err != nil {
			return fmt.Errorf("find code: %w", err)
		}

		now := s.now()
		if domain.CodeExpired(loginCode, now) {
			return domain.ErrCodeExpired
		}

		consumed, err := repos.LoginCode.MarkUsed(ctx, loginCode.ID)
		if err != nil {
			return fmt.Errorf("mark code used: %w", err)
		}
		if !consumed {
			// A concurrent verify got there first.
			return domain.ErrInvalidCode
		}

		if err := repos.User.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return fmt.Errorf("update last login: %w", err)
		}
		user.LastLogin = &now

		token, err := s.tokens.Mint(user.ID)
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}

		result = &VerifyResult{Token: token, User: user}
		return nil
	})
	if err != nil {
		if domain.Kind(err) == domain.KindInternal {
			s.metrics.CodeVerified("error")
			return nil, internalError(ctx, s.logger, "auth.VerifyLoginCode", err)
		}
		s.metrics.CodeVerified(verifyResultLabel(err))
		return nil, err
	}

	s.metrics.CodeVerified("ok")
	return result, nil
}

func verifyResultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_user"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	default:
		return "invalid"
	}
}

// VerifyToken resolves a bearer token to its user. Bad signatures, expired
// tokens and deleted users all yield domain.ErrUnauthorized.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.DebugContext(ctx, "token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repos.User.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, internalError(ctx, s.logger, "auth.VerifyToken", err)
	}
	return user, nil
}

// DeleteAccount removes the user together with their codes and albums.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := s.repos.User.Delete(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return internalError(ctx, s.logger, "auth.DeleteAccount", err)
	}
	s.logger.InfoContext(ctx, "account deleted", "user_id", userID)
	return nil
}

// PruneLoginCodes deletes codes older than the retention period that can no
// longer be verified.
func (s *AuthService) PruneLoginCodes(ctx context.Context) (int64, error) {
	now := s.now()
	deleted, err := s.repos.LoginCode.DeleteStale(ctx, now.Add(-s.cfg.CodeRetention), now)
	if err != nil {
		return 0, internalError(ctx, s.logger, "auth.PruneLoginCodes", err)
	}
	return deleted, nil
}

// StartCodeCleanup prunes stale codes every interval until ctx is done.
func (s *AuthService) StartCodeCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := s.PruneLoginCodes(ctx)
				if err == nil && deleted > 0 {
					s.logger.InfoContext(ctx, "login code cleanup completed", "deleted", deleted)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
