package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/repository"
	"github.com/yukikurage/taskflow/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateUser    = errors.New("failed to create user")
	ErrFailedToCreateProfile = errors.New("failed to create profile")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrUserExists            = errors.New("username or email is already registered")
)

var usernameRe = regexp.MustCompile(constants.UsernamePattern)

// ValidUsername reports whether s has the accepted username shape.
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo   repository.UserRepository
	inviteCode string
	jwtSecret  []byte
}

// NewAuthService creates a new AuthService. inviteCode is the secret that
// registers a manager when entered in place of a manager's username.
func NewAuthService(userRepo repository.UserRepository, inviteCode, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		inviteCode: inviteCode,
		jwtSecret:  []byte(jwtSecret),
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username    string
	Email       string
	Password1   string
	Password2   string
	ManagerName string
}

// Signup creates a user and its profile. Entering the invite code as the
// manager name makes a Manager, otherwise the named manager gets a new Employee.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	verr := newValidationError()

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	managerName := strings.TrimSpace(input.ManagerName)

	switch {
	case username == "":
		verr.Add("username", "This field is required.")
	case !ValidUsername(username):
		verr.Add("username", "Username must start with a letter and contain only letters, numbers, and underscores.")
	default:
		if _, err := s.userRepo.FindByUsername(username); err == nil {
			verr.Add("username", "Username already exists.")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}

	if email == "" {
		verr.Add("email", "This field is required.")
	} else if _, err := s.userRepo.FindByEmail(email); err == nil {
		verr.Add("email", "Email is already registered.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	switch {
	case input.Password1 == "":
		verr.Add("password1", "This field is required.")
	case input.Password1 != input.Password2:
		verr.Add("password2", "Passwords don't match.")
	case !strongPassword(input.Password1):
		verr.Add("password2", fmt.Sprintf("Password must be at least %d characters and include both letters and digits.", constants.MinPasswordLength))
	}

	profile := &models.Profile{Role: models.RoleEmployee}
	switch {
	case managerName == "":
		verr.Add("manager_name", "This field is required.")
	case utils.InviteCodeMatches(s.inviteCode, managerName):
		profile.Role = models.RoleManager
	default:
		manager, err := s.userRepo.FindByUsername(managerName)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to find manager: %w", err)
			}
			verr.Add("manager_name", "Manager username does not exist.")
		} else if manager.Profile == nil || manager.Profile.Role != models.RoleManager {
			verr.Add("manager_name", "That user is not a manager.")
		} else {
			profile.ManagerID = &manager.ID
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.CreateWithProfile(user, profile); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUser):
			// lost a race with a concurrent signup after the checks above passed
			return nil, ErrUserExists
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateProfile):
			return nil, ErrFailedToCreateProfile
		default:
			return nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return user, nil
}

func strongPassword(p string) bool {
	if len(p) < constants.MinPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
		}
	}
	return letter && digit
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// TokenClaims are the claims carried by API bearer tokens.
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 bearer token for user.
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(constants.TokenTTLHours * time.Hour)
	claims := TokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies a bearer token and returns the user ID it was issued for.
func (s *AuthService) ParseToken(tokenString string) (uint64, error) {
	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
