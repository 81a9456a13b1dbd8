package services

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/store"
	"storefront/internal/validate"
)

// AuthService handles registration and the session-cookie login used for
// ownership checks. Token issuance is deliberately out of scope.
type AuthService struct {
	Store      *store.Store
	BcryptCost int
}

func NewAuthService(st *store.Store, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{Store: st, BcryptCost: bcryptCost}
}

func (s *AuthService) Register(name, email, password string) (domain.User, error) {
	name, ok := validate.Name(name)
	if !ok {
		return domain.User{}, domain.Validationf("Name must be 1-50 characters")
	}
	email, ok = validate.Email(email)
	if !ok {
		return domain.User{}, domain.Validationf("Email address is not valid")
	}
	if !validate.Password(password) {
		return domain.User{}, domain.Validationf("Password must be 8-64 characters with upper, lower, digit and symbol")
	}

	taken, err := s.Store.Users.EmailTaken(email)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, domain.Conflictf("An account with email '%s' already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Hash:  string(hash),
		Role:  "USER",
	}
	if err := s.Store.Users.Insert(&u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Login verifies credentials and binds the session id to the user. Wrong
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(sid, email, password string) (domain.User, error) {
	badCreds := domain.Authorizationf("Invalid email or password")

	u, err := s.Store.Users.ByEmail(strings.TrimSpace(email))
	if err != nil {
		return domain.User{}, badCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return domain.User{}, badCreds
	}
	if err := s.Store.Users.BindSession(sid, u.ID); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Store.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (domain.User, error) {
	return s.Store.Users.SessionUser(sid)
}
