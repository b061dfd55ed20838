package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tjmpn2/merchbooth/internal/domain/model"
	"github.com/tjmpn2/merchbooth/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Name string
	PIN  string
}

// token 形
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	Operator model.Operator `json:"operator"`
	Token    AccessToken    `json:"token"`
}

// 名前またはPINが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みオペレーター
var ErrOperatorInactive = errors.New("operator is inactive")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(operatorID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力PINと保存したハッシュを比べる約束
type PINVerifier interface {
	Verify(plain string, hashed string) bool
}

// usecaseがvalidatorに依存する約束
type LoginValidator interface {
	ValidateLogin(name, pin string) error
}

type LoginUsecase struct {
	operators repository.OperatorRepository
	validator LoginValidator
	verifier  PINVerifier
	issuer    AccessTokenIssuer
	clock     Clock
}

func NewLoginUsecase(
	operators repository.OperatorRepository,
	validator LoginValidator,
	verifier PINVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		operators: operators,
		validator: validator,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	if err := u.validator.ValidateLogin(in.Name, in.PIN); err != nil {
		return out, err
	}

	//名前でオペレーター取得
	op, err := u.operators.FindByName(ctx, in.Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, err
	}

	//PIN照合
	if ok := u.verifier.Verify(in.PIN, op.PINHash); !ok {
		return out, ErrInvalidCredentials
	}

	//停止中はログイン不可
	if !op.IsActive {
		return out, ErrOperatorInactive
	}

	now := u.clock.Now()
	token, exp, err := u.issuer.Issue(op.ID, op.Role, now)
	if err != nil {
		return out, err
	}

	//最終ログイン時刻更新
	op.LastLoginAt = &now
	if err := u.operators.Update(ctx, op); err != nil {
		return out, err
	}

	out.Operator = *op
	out.Token = AccessToken{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(exp.Sub(now).Seconds()),
	}
	return out, nil
}
