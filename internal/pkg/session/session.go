package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/culturepass/cp-stock/pkg/errors"
	"github.com/culturepass/cp-stock/pkg/status"
)

type contextKey string

const accountContextKey contextKey = "session.account"

// Account is the pro operator attached to the current request.
type Account struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Session interface {
	Get(ctx context.Context, sessionID string) (Account, error)
	Set(ctx context.Context, sessionID string, acc Account, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type redisSessionStore struct {
	logger *logrus.Logger
	rc     *redis.Client
}

func NewRedisSessionStore(logger *logrus.Logger, rc *redis.Client) Session {
	return &redisSessionStore{
		logger: logger,
		rc:     rc,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("prosession:%s", sessionID)
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (Account, error) {
	buff, err := s.rc.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return Account{}, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "session has expired")
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return Account{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting the session")
	}

	var acc Account
	if err := json.Unmarshal(buff, &acc); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return Account{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting the session")
	}

	return acc, nil
}

func (s *redisSessionStore) Set(ctx context.Context, sessionID string, acc Account, ttl time.Duration) error {
	buff, _ := json.Marshal(acc)

	if err := s.rc.Set(ctx, sessionKey(sessionID), buff, ttl).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while storing the session")
	}

	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rc.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while deleting the session")
	}

	return nil
}

func SetAccountToCtx(ctx context.Context, acc Account) context.Context {
	return context.WithValue(ctx, accountContextKey, acc)
}

func GetAccountFromCtx(ctx context.Context) (Account, error) {
	acc, ok := ctx.Value(accountContextKey).(Account)
	if !ok {
		return Account{}, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "no account attached to the request")
	}

	return acc, nil
}
