package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService interface {
	Register(dbc dbctx.Context, in AccountInput) (*Profile, *TokenPair, error)
	Login(dbc dbctx.Context, email, password string) (*TokenPair, error)
	Refresh(dbc dbctx.Context, refreshToken string) (*TokenPair, error)
	Logout(dbc dbctx.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userService   UserService
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userService UserService,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userService:   userService,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  []byte(jwtSecretKey),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (as *authService) Register(dbc dbctx.Context, in AccountInput) (*Profile, *TokenPair, error) {
	p, err := as.userService.Register(dbc, in)
	if err != nil {
		return nil, nil, err
	}
	var pair *TokenPair
	if err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		tp, err := as.issue(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, p.User)
		if err != nil {
			return err
		}
		pair = tp
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return p, pair, nil
}

func (as *authService) Login(dbc dbctx.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apierr.BadRequest("credentials_required", "email and password are required")
	}
	user, err := as.userRepo.GetByEmail(dbc, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.Unauthorized("invalid_credentials", "invalid email or password")
	}
	if err != nil {
		return nil, apierr.FromDB(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("invalid_credentials", "invalid email or password")
	}

	var pair *TokenPair
	if err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		tp, err := as.issue(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, user)
		if err != nil {
			return err
		}
		pair = tp
		return nil
	}); err != nil {
		return nil, err
	}
	logger.FromContext(dbc.Ctx, as.log).Info("User logged in", "user_id", user.ID)
	return pair, nil
}

func (as *authService) Refresh(dbc dbctx.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.BadRequest("refresh_token_required", "refresh_token is required")
	}
	var pair *TokenPair
	var expired bool
	err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(inner, []string{refreshToken})
		if err != nil {
			return apierr.FromDB(err, "user_token")
		}
		if len(found) == 0 {
			return apierr.Unauthorized("invalid_refresh_token", "refresh token not recognized")
		}
		existing := found[0]
		if !existing.ExpiresAt.After(as.now()) {
			if err := as.userTokenRepo.DeleteByIDs(inner, []uuid.UUID{existing.ID}); err != nil {
				return apierr.FromDB(err, "user_token")
			}
			expired = true
			return nil
		}
		user, err := as.userRepo.GetByID(inner, existing.UserID)
		if err != nil {
			return apierr.FromDB(err, "user")
		}
		tp, err := as.issue(inner, user)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.DeleteByIDs(inner, []uuid.UUID{existing.ID}); err != nil {
			return apierr.FromDB(err, "user_token")
		}
		pair = tp
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		// the expired row is deleted in the committed transaction
		return nil, apierr.Unauthorized("refresh_token_expired", "refresh token expired")
	}
	return pair, nil
}

func (as *authService) Logout(dbc dbctx.Context) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	if rd.TokenString == "" {
		return apierr.Unauthorized("unauthorized", "no token in request")
	}
	found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
	if err != nil {
		return apierr.FromDB(err, "user_token")
	}
	if len(found) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(found))
	for _, t := range found {
		ids = append(ids, t.ID)
	}
	if err := as.userTokenRepo.DeleteByIDs(dbc, ids); err != nil {
		return apierr.FromDB(err, "user_token")
	}
	return nil
}

// issue signs a new access token and persists it with a fresh refresh token.
func (as *authService) issue(dbc dbctx.Context, user *types.User) (*TokenPair, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return nil, apierr.Internal("token_sign_failed", err)
	}
	row := &types.UserToken{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    as.now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		return nil, apierr.FromDB(err, "user_token")
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: row.RefreshToken,
		ExpiresIn:    int64(as.accessTTL / time.Second),
	}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.jwtSecretKey)
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized("unauthorized", "missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Sprintf("failed to parse token: %v", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.Unauthorized("invalid_token", "invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", "invalid user id in token")
	}
	role := types.Role(claims.Role)
	if !role.Valid() {
		return ctx, apierr.Unauthorized("invalid_token", "invalid role in token")
	}
	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{tokenString})
	if err != nil {
		return ctx, apierr.FromDB(err, "user_token")
	}
	if len(found) == 0 {
		return ctx, apierr.Unauthorized("token_revoked", "token has been revoked")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        string(role),
	}), nil
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}
