package apikey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"audit-portal-go/pkg/model"
)

var (
	// ErrInvalidKey is returned for malformed, unknown, revoked or mismatching keys
	ErrInvalidKey = errors.New("invalid API key")
	// ErrNotFound is returned when a key does not exist for the user
	ErrNotFound = errors.New("API key not found")
	// ErrKeyLimit is returned when a user already holds MaxKeysPerUser active keys
	ErrKeyLimit = errors.New("API key limit reached")
)

const (
	keyPrefix  = "ak"
	secretSize = 32

	// MaxKeysPerUser caps the number of active keys per user
	MaxKeysPerUser = 10
)

// Store persists API keys
type Store interface {
	Create(ctx context.Context, key *model.APIKey) error
	Get(ctx context.Context, id string) (*model.APIKey, error)
	ListByUser(ctx context.Context, userID int) ([]model.APIKey, error)
	CountActive(ctx context.Context, userID int) (int, error)
	Revoke(ctx context.Context, userID int, id string) error
	TouchLastUsed(ctx context.Context, id string) error
}

// Service issues and verifies API keys
type Service struct {
	store Store
	cost  int
	log   logr.Logger
}

// NewService creates a new API key service. A non-positive cost uses bcrypt.DefaultCost.
func NewService(store Store, cost int, log logr.Logger) *Service {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{store: store, cost: cost, log: log}
}

// Create issues a new key. The plaintext key is only ever returned here.
func (s *Service) Create(ctx context.Context, userID int, name string) (*model.APIKeyCreateResponse, error) {
	count, err := s.store.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= MaxKeysPerUser {
		return nil, ErrKeyLimit
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	key := &model.APIKey{
		ID:         strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		SecretHash: string(hash),
	}
	if err := s.store.Create(ctx, key); err != nil {
		return nil, err
	}

	s.log.Info("[APIKEY] key created", "user_id", userID, "key_id", key.ID)

	return &model.APIKeyCreateResponse{
		ID:        key.ID,
		Name:      key.Name,
		Key:       formatKey(key.ID, secret),
		CreatedAt: key.CreatedAt,
	}, nil
}

// List returns the user's keys without secrets
func (s *Service) List(ctx context.Context, userID int) ([]model.APIKey, error) {
	return s.store.ListByUser(ctx, userID)
}

// Revoke disables a key immediately
func (s *Service) Revoke(ctx context.Context, userID int, id string) error {
	if err := s.store.Revoke(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info("[APIKEY] key revoked", "user_id", userID, "key_id", id)
	return nil
}

// Authenticate resolves a plaintext key to its owner
func (s *Service) Authenticate(ctx context.Context, raw string) (int, error) {
	id, secret, ok := parseKey(raw)
	if !ok {
		return 0, ErrInvalidKey
	}

	key, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrInvalidKey
		}
		return 0, err
	}
	if key.Revoked() {
		return 0, ErrInvalidKey
	}
	if bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)) != nil {
		return 0, ErrInvalidKey
	}

	if err := s.store.TouchLastUsed(ctx, id); err != nil {
		s.log.Error(err, "[APIKEY] failed to record key usage", "key_id", id)
	}
	return key.UserID, nil
}

func generateSecret() (string, error) {
	b := make([]byte, secretSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func formatKey(id, secret string) string {
	return keyPrefix + "_" + id + "_" + secret
}

// parseKey splits "ak_<id>_<secret>". The secret may itself contain underscores.
func parseKey(raw string) (id, secret string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), "_", 3)
	if len(parts) != 3 || parts[0] != keyPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
