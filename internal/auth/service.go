// Package auth gates remote sync behind signed-in identities. Users
// live in the remote database's users collection with bcrypt-hashed
// passwords; a successful login issues a JWT and marks the identity as
// signed in until the token expires or the user logs out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const usersCollection = "users"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
)

type userDoc struct {
	Username     string    `bson:"_id"`
	PasswordHash []byte    `bson:"passwordHash"`
	Created      time.Time `bson:"created"`
	LastLogin    time.Time `bson:"lastLogin,omitempty"`
}

// Service authenticates users and tracks signed-in identities
type Service struct {
	users    *mongo.Collection
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]time.Time // username -> token expiry
}

// NewService creates an auth service on the given database. A nil
// database disables registration and login entirely.
func NewService(db *mongo.Database, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	s := &Service{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
		sessions: make(map[string]time.Time),
	}
	if db != nil {
		s.users = db.Collection(usersCollection)
	}
	return s
}

// Register creates a new user with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, username, password string) error {
	if s.users == nil {
		return errors.New("auth backend unavailable")
	}
	if username == "" || len(password) < 6 {
		return errors.New("username and a password of at least 6 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.InsertOne(ctx, userDoc{
		Username:     username,
		PasswordHash: hash,
		Created:      time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", username))
	return nil
}

// Login verifies credentials and returns a signed JWT. The identity is
// marked signed in for the token's lifetime.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if s.users == nil {
		return "", errors.New("auth backend unavailable")
	}

	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"_id": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(doc.PasswordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	expiry := time.Now().Add(s.tokenTTL)
	token, err := signToken(s.secret, username, expiry)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": username},
		bson.M{"$set": bson.M{"lastLogin": time.Now().UTC()}},
	); err != nil {
		s.logger.Warn("failed to record last login", zap.String("username", username), zap.Error(err))
	}

	s.mu.Lock()
	s.sessions[username] = expiry
	s.mu.Unlock()

	s.logger.Info("user logged in", zap.String("username", username))
	return token, nil
}

// Logout drops the identity's session
func (s *Service) Logout(username string) {
	s.mu.Lock()
	delete(s.sessions, username)
	s.mu.Unlock()
}

// Verify parses a token and returns the identity it carries
func (s *Service) Verify(token string) (string, error) {
	return parseToken(s.secret, token)
}

// SignedIn reports whether any identity currently holds a live
// session. The sync engine consults this as its remote gate.
func (s *Service) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for username, expiry := range s.sessions {
		if now.Before(expiry) {
			return true
		}
		delete(s.sessions, username)
	}
	return false
}

func signToken(secret []byte, username string, expiry time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(secret []byte, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
