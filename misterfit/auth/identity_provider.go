package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"misterfit_platform/misterfit/schema"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFoundWithEmail = errors.New("no user found for given email")
	ErrInvalidCredentials    = errors.New("invalid login credentials")
	ErrGeneratingJwt         = errors.New("error generating jwt")
	ErrInvalidRole           = errors.New("invalid role")
	ErrUserDeactivated       = errors.New("user account is deactivated")
)

type LoginResult struct {
	User        schema.User
	AccessToken string
}

type requestContextKey string

const UserRequestContextKey requestContextKey = "user"

type IdentityProvider struct {
	jwtManager *JwtManager
	db         *gorm.DB
	auditLog   AuditLogger
}

type IdentityProviderArgs struct {
	Secret        []byte
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func NewIdentityProvider(db *gorm.DB, auditLog AuditLogger, args IdentityProviderArgs) (*IdentityProvider, error) {
	if args.AdminEmail != "" {
		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(args.AdminPassword), 10)
		if err != nil {
			return nil, fmt.Errorf("error encrypting admin password: %w", err)
		}

		err = addInitialAdminToDb(db, args.AdminName, args.AdminEmail, hashedPwd)
		if err != nil {
			return nil, fmt.Errorf("error adding initial admin to db: %w", err)
		}
	}

	return &IdentityProvider{
		jwtManager: NewJwtManager(args.Secret),
		db:         db,
		auditLog:   auditLog,
	}, nil
}

func addInitialAdminToDb(db *gorm.DB, name, email string, password []byte) error {
	user := schema.User{
		Id:       uuid.New(),
		FullName: name,
		Email:    email,
		Password: password,
		Role:     schema.RoleAdmin,
		IsActive: true,
	}

	return db.Transaction(func(txn *gorm.DB) error {
		var existingUser schema.User
		result := txn.Limit(1).Find(&existingUser, "email = ?", email)
		if result.Error != nil {
			slog.Error("sql error checking if admin has already been added", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected == 0 {
			result := txn.Create(&user)
			if result.Error != nil {
				slog.Error("sql error creating initial admin user", "error", result.Error)
				return schema.ErrDbAccessFailed
			}
		}
		return nil
	})
}

func (auth *IdentityProvider) addUserToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			userId, err := UserIdFromContext(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			user, err := schema.GetUser(userId, auth.db)
			if err != nil {
				if errors.Is(err, schema.ErrUserNotFound) {
					http.Error(w, err.Error(), http.StatusUnauthorized)
					return
				}
				http.Error(w, fmt.Sprintf("unable to find user %v: %v", userId, err), http.StatusInternalServerError)
				return
			}

			if !user.IsActive {
				http.Error(w, ErrUserDeactivated.Error(), http.StatusUnauthorized)
				return
			}

			reqCtx := r.Context()
			reqCtx = context.WithValue(reqCtx, UserRequestContextKey, user)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		}

		return http.HandlerFunc(handler)
	}
}

func (auth *IdentityProvider) AuthMiddleware() chi.Middlewares {
	return chi.Middlewares{auth.jwtManager.Verifier(), auth.jwtManager.Authenticator(), auth.addUserToContext(), auth.auditLog.Middleware}
}

func (auth *IdentityProvider) LoginWithEmail(email, password string) (LoginResult, error) {
	email = schema.NormalizeEmail(email)

	var user schema.User
	result := auth.db.First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return LoginResult{}, ErrUserNotFoundWithEmail
		}
		slog.Error("sql error looking up user by email", "error", result.Error)
		return LoginResult{}, schema.ErrDbAccessFailed
	}

	err := bcrypt.CompareHashAndPassword(user.Password, []byte(password))
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return LoginResult{}, ErrUserDeactivated
	}

	token, err := auth.jwtManager.CreateUserJwt(user)
	if err != nil {
		return LoginResult{}, ErrGeneratingJwt
	}

	return LoginResult{User: user, AccessToken: token}, nil
}

func (auth *IdentityProvider) CreateUser(fullName, email, password, role string) (uuid.UUID, error) {
	email = schema.NormalizeEmail(email)
	role = schema.NormalizeRole(role)
	if role == "" {
		role = schema.RoleStudent
	}
	if !schema.ValidRole(role) {
		return uuid.UUID{}, ErrInvalidRole
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("error encrypting password: %w", err)
	}

	newUser := schema.User{
		Id:       uuid.New(),
		FullName: fullName,
		Email:    email,
		Password: hashedPwd,
		Role:     role,
		IsActive: true,
	}

	err = auth.db.Transaction(func(txn *gorm.DB) error {
		var existingUser schema.User
		result := txn.Limit(1).Find(&existingUser, "email = ?", email)
		if result.Error != nil {
			slog.Error("sql error checking for existing email", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected != 0 {
			return schema.ErrEmailAlreadyInUse
		}

		result = txn.Create(&newUser)
		if result.Error != nil {
			slog.Error("sql error creating new user entry", "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		return nil
	})

	if err != nil {
		return uuid.UUID{}, fmt.Errorf("error creating new user: %w", err)
	}

	return newUser.Id, nil
}

func (auth *IdentityProvider) GetTokenExpiration(r *http.Request) (time.Time, error) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return time.Time{}, fmt.Errorf("error retrieving access token: %w", err)
	}

	return token.Expiration(), nil
}
