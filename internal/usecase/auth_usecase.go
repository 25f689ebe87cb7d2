package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/ourllet/internal/domain"
)

// AuthUseCase handles email verification, registration and Google sign-in.
type AuthUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	ledgers   *LedgerUseCase
	store     VerificationStore
	mailer    Mailer
	codeGen   CodeGenerator
	tokens    TokenIssuer
	google    GoogleVerifier
	idGen     IDGenerator
	codeTTL   time.Duration
	metrics   MetricsRecorder
}

// AuthDeps groups the collaborators of AuthUseCase.
type AuthDeps struct {
	TxManager       TransactionManager
	UserRepo        UserRepository
	Ledgers         *LedgerUseCase
	Store           VerificationStore
	Mailer          Mailer
	CodeGenerator   CodeGenerator
	Tokens          TokenIssuer
	Google          GoogleVerifier
	IDGenerator     IDGenerator
	CodeTTL         time.Duration
	MetricsRecorder MetricsRecorder
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(deps AuthDeps) *AuthUseCase {
	uc := &AuthUseCase{
		txManager: deps.TxManager,
		userRepo:  deps.UserRepo,
		ledgers:   deps.Ledgers,
		store:     deps.Store,
		mailer:    deps.Mailer,
		codeGen:   deps.CodeGenerator,
		tokens:    deps.Tokens,
		google:    deps.Google,
		idGen:     deps.IDGenerator,
		codeTTL:   deps.CodeTTL,
		metrics:   deps.MetricsRecorder,
	}
	if uc.codeTTL <= 0 {
		uc.codeTTL = DefaultVerificationCodeTTL
	}
	if uc.metrics == nil {
		uc.metrics = noopMetrics{}
	}
	return uc
}

// SendCode emails a fresh verification code to email.
func (uc *AuthUseCase) SendCode(ctx context.Context, email string) error {
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	email = domain.NormalizeEmail(email)

	code, err := uc.codeGen.Generate()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	if err := uc.store.Set(ctx, verificationKey(email), code, uc.codeTTL); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := uc.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}

	uc.metrics.RecordVerificationCode(VerificationSent)
	return nil
}

// VerifyResult is the outcome of a code verification. Exactly one of Token
// and SignupToken is set.
type VerifyResult struct {
	Token       string
	User        *domain.User
	SignupToken string
	IsNewUser   bool
}

// VerifyCode checks a code. The stored code is consumed by any attempt.
func (uc *AuthUseCase) VerifyCode(ctx context.Context, email, code string) (*VerifyResult, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidateVerificationCode(code); err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)

	ok, err := uc.store.ConsumeIfValid(ctx, verificationKey(email), code)
	if err != nil {
		return nil, fmt.Errorf("consume verification code: %w", err)
	}
	if !ok {
		uc.metrics.RecordVerificationCode(VerificationRejected)
		return nil, domain.ErrInvalidCode
	}
	uc.metrics.RecordVerificationCode(VerificationAccepted)

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		signupToken, err := uc.tokens.GenerateSignup(email)
		if err != nil {
			return nil, fmt.Errorf("issue signup token: %w", err)
		}
		return &VerifyResult{SignupToken: signupToken, IsNewUser: true}, nil
	}

	token, err := uc.tokens.GenerateSession(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &VerifyResult{Token: token, User: user}, nil
}

// RegisterInput represents input for completing a signup.
type RegisterInput struct {
	SignupToken string
	Nickname    string
	LedgerName  string
}

// RegisterResult is a freshly created account with its first ledger.
type RegisterResult struct {
	Token  string
	User   *domain.User
	Ledger *domain.Ledger
}

// Register creates the user named by a signup token together with a named ledger.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if strings.TrimSpace(input.SignupToken) == "" {
		return nil, domain.NewValidationError("signupToken is required")
	}

	nickname := strings.TrimSpace(input.Nickname)
	ledgerName := strings.TrimSpace(input.LedgerName)

	var msgs []string
	if len([]rune(nickname)) > domain.MaxNicknameLength {
		msgs = append(msgs, fmt.Sprintf("nickname must be at most %d characters", domain.MaxNicknameLength))
	}
	if ledgerName == "" {
		msgs = append(msgs, "ledgerName is required")
	} else if err := domain.ValidateLedgerName(ledgerName); err != nil {
		msgs = append(msgs, err.Error())
	}
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	email, err := uc.tokens.VerifySignup(input.SignupToken)
	if err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uc.idGen.Generate(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nickname != "" {
		user.Name = &nickname
	}

	var ledger *domain.Ledger
	err = uc.ledgers.inTx(ctx, func(tx Transaction) error {
		if err := uc.userRepo.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		var err error
		ledger, err = uc.ledgers.createInTx(ctx, tx, user.ID, ledgerName)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.GenerateSession(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &RegisterResult{Token: token, User: user, Ledger: ledger}, nil
}

// LoginResult is a signed-in user with a session token.
type LoginResult struct {
	Token string
	User  *domain.User
}

// LoginWithGoogle verifies a Google ID token and signs the user in.
func (uc *AuthUseCase) LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, domain.NewValidationError("idToken is required")
	}

	identity, err := uc.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	return uc.LoginWithGoogleIdentity(ctx, identity)
}

// LoginWithGoogleIdentity signs in an already verified Google identity. Accounts
// are matched by Google subject first, then linked by email, then created.
func (uc *AuthUseCase) LoginWithGoogleIdentity(ctx context.Context, identity *GoogleIdentity) (*LoginResult, error) {
	if identity == nil || identity.Sub == "" || identity.Email == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := uc.findOrCreateGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.GenerateSession(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

func (uc *AuthUseCase) findOrCreateGoogleUser(ctx context.Context, identity *GoogleIdentity) (*domain.User, error) {
	email := domain.NormalizeEmail(identity.Email)
	now := time.Now().UTC()

	user, err := uc.userRepo.GetByGoogleSub(ctx, identity.Sub)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if user == nil {
		user, err = uc.userRepo.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if user == nil {
		user = &domain.User{
			ID:        uc.idGen.Generate(),
			Email:     email,
			GoogleSub: &identity.Sub,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyGoogleProfile(user, identity)

		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	}

	user.GoogleSub = &identity.Sub
	user.Email = email
	applyGoogleProfile(user, identity)
	user.UpdatedAt = now

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

func applyGoogleProfile(user *domain.User, identity *GoogleIdentity) {
	if identity.Name != "" {
		name := identity.Name
		user.Name = &name
	}
	if identity.Picture != "" {
		picture := identity.Picture
		user.Picture = &picture
	}
}

// GetUser returns a user by id.
func (uc *AuthUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

func verificationKey(email string) string {
	return verificationKeyPrefix + email
}
