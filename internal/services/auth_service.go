package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/security"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type authService struct {
	repo           repositories.Repository
	tokens         *security.TokenManager
	hasher         *security.PasswordHasher
	defaultAdmin   config.DefaultAdminConfig
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
	now            func() time.Time
}

func NewAuthService(
	repo repositories.Repository,
	tokens *security.TokenManager,
	hasher *security.PasswordHasher,
	defaultAdmin config.DefaultAdminConfig,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) AuthService {
	return &authService{
		repo:           repo,
		tokens:         tokens,
		hasher:         hasher,
		defaultAdmin:   defaultAdmin,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
		now:            time.Now,
	}
}

// ===== STUDENTS =====

func (s *authService) RegisterStudent(ctx context.Context, req *RegisterStudentRequest) (*AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	s.logger.Info("Registering student", "email", req.Email)

	if errs := s.validator.GetBusinessValidator().ValidateStudentRegister(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	exists, err := s.repo.Student().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &models.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hash,
		IsActive:  true,
	}
	if err := s.repo.Student().Create(ctx, student); err != nil {
		// Lost a race with a concurrent registration for the same email
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	result, err := s.issueToken(student.ID)
	if err != nil {
		return nil, err
	}
	result.Student = NewStudentView(student)

	events.SafePublish(ctx, s.eventPublisher, s.logger, events.StudentRegistered, events.StudentPayload{
		StudentID: student.ID,
		Email:     student.Email,
	})

	s.logger.Info("Student registered", "student_id", student.ID)
	return result, nil
}

func (s *authService) LoginStudent(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if errs := s.validator.GetBusinessValidator().ValidateLogin(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	student, err := s.repo.Student().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			_ = s.hasher.CompareDummy(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	if err := s.checkPassword(student.Password, req.Password); err != nil {
		return nil, err
	}
	if !student.IsActive {
		return nil, ErrAccountInactive
	}

	now := s.now()
	if err := s.repo.Student().UpdateLastLogin(ctx, student.ID, now); err != nil {
		s.logger.Warn("Failed to update last login", "student_id", student.ID, "error", err)
	} else {
		student.LastLogin = &now
	}

	result, err := s.issueToken(student.ID)
	if err != nil {
		return nil, err
	}
	result.Student = NewStudentView(student)

	s.logger.Info("Student logged in", "student_id", student.ID)
	return result, nil
}

func (s *authService) GetStudentProfile(ctx context.Context, studentID string) (*StudentView, error) {
	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return NewStudentView(student), nil
}

func (s *authService) UpdateStudentProfile(ctx context.Context, studentID string, req *UpdateProfileRequest) (*StudentView, error) {
	s.logger.Info("Updating student profile", "student_id", studentID)

	if errs := s.validator.GetBusinessValidator().ValidateProfileUpdate(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	student, err := s.repo.Student().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}

	profile := student.Profile.Data()
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Avatar != nil {
		profile.Avatar = *req.Avatar
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		dob := *req.DateOfBirth
		profile.DateOfBirth = &dob
	}
	student.Profile = datatypes.NewJSONType(profile)

	if err := s.repo.Student().Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	return NewStudentView(student), nil
}

// ===== ADMINS =====

func (s *authService) LoginAdmin(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if errs := s.validator.GetBusinessValidator().ValidateLogin(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	admin, err := s.repo.Admin().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			_ = s.hasher.CompareDummy(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	if err := s.checkPassword(admin.Password, req.Password); err != nil {
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrAccountInactive
	}

	now := s.now()
	if err := s.repo.Admin().UpdateLastLogin(ctx, admin.ID, now); err != nil {
		s.logger.Warn("Failed to update last login", "admin_id", admin.ID, "error", err)
	} else {
		admin.LastLogin = &now
	}

	result, err := s.issueToken(admin.ID)
	if err != nil {
		return nil, err
	}
	result.Admin = admin

	s.logger.Info("Admin logged in", "admin_id", admin.ID)
	return result, nil
}

func (s *authService) GetAdminProfile(ctx context.Context, adminID string) (*models.Admin, error) {
	admin, err := s.repo.Admin().GetByID(ctx, adminID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

func (s *authService) EnsureDefaultAdmin(ctx context.Context) (*models.Admin, error) {
	count, err := s.repo.Admin().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil, ErrAdminExists
	}

	hash, err := s.hasher.Hash(s.defaultAdmin.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Name:        s.defaultAdmin.Name,
		Email:       s.defaultAdmin.Email,
		Password:    hash,
		Role:        models.AdminRoleSuperAdmin,
		Permissions: datatypes.NewJSONType(models.FullPermissions()),
		IsActive:    true,
	}
	if err := s.repo.Admin().Create(ctx, admin); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Default admin created", "admin_id", admin.ID, "email", admin.Email)
	return admin, nil
}

// ===== TOKENS =====

func (s *authService) ResolveIdentity(ctx context.Context, token string) (*Identity, error) {
	accountID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, &ServiceError{Category: ErrUnauthorized, Message: ErrInvalidToken.Message, Err: err}
	}

	// Ids are uuids shared by neither table, so students are checked first
	student, err := s.repo.Student().GetByID(ctx, accountID)
	switch {
	case err == nil:
		if !student.IsActive {
			return nil, ErrIdentityNotFound
		}
		return &Identity{Role: models.RoleStudent, Student: student}, nil
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	admin, err := s.repo.Admin().GetByID(ctx, accountID)
	switch {
	case err == nil:
		if !admin.IsActive {
			return nil, ErrIdentityNotFound
		}
		return &Identity{Role: models.RoleAdmin, Admin: admin}, nil
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	return nil, ErrIdentityNotFound
}

// issueToken signs a session token for accountID and reports when it lapses
func (s *authService) issueToken(accountID string) (*AuthResult, error) {
	token, err := s.tokens.Generate(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: s.now().UTC().Add(s.tokens.TTL())}, nil
}

func (s *authService) checkPassword(hash, candidate string) error {
	if err := s.hasher.Compare(hash, candidate); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
