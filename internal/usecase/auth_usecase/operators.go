package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tjmpn2/merchbooth/internal/config"
	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/repository"
)

// PINからハッシュへ。
type PINHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// ProvisionOperators creates the configured operators that do not exist yet.
// Existing operators keep their PIN and role.
func ProvisionOperators(
	ctx context.Context,
	operators repository.OperatorRepository,
	validator LoginValidator,
	hasher PINHasher,
	seeds []config.OperatorSeed,
) (created int, err error) {
	for _, s := range seeds {
		if err := validator.ValidateLogin(s.Name, s.PIN); err != nil {
			return created, fmt.Errorf("operator %q: %w", s.Name, err)
		}

		_, err := operators.FindByName(ctx, s.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}

		hashed, err := hasher.Hash(s.PIN)
		if err != nil {
			return created, err
		}
		op := &model.Operator{
			Name:     strings.TrimSpace(s.Name),
			PINHash:  hashed,
			Role:     s.Role,
			IsActive: true,
		}
		if err := operators.Create(ctx, op); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

// bcryptハッシュ化
type BcryptPINHasher struct {
	cost int
}

// DI
func NewBcryptPINHasher(cost int) *BcryptPINHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPINHasher{cost}
}

func (h *BcryptPINHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPINVerifier struct{}

// DI
func NewBcryptPINVerifier() *BcryptPINVerifier {
	return &BcryptPINVerifier{}
}

func (v *BcryptPINVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
