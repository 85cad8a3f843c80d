package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"campus-records/internal/model"
	"campus-records/pkg/apierror"
)

const bcryptCost = 12

type userStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
	FindByRoleName(ctx context.Context, roleName string) ([]model.User, error)
	FindByActive(ctx context.Context, active bool) ([]model.User, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]model.User, error)
}

type roleFinder interface {
	FindByID(ctx context.Context, id int64) (model.Role, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id int64) (model.Student, error)
}

type UserService struct {
	users    userStore
	roles    roleFinder
	students studentFinder
}

func NewUserService(users userStore, roles roleFinder, students studentFinder) *UserService {
	return &UserService{users: users, roles: roles, students: students}
}

func (s *UserService) Create(ctx context.Context, req model.UserCreateRequest) (model.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	email := strings.TrimSpace(req.Email)

	if username == "" || password == "" || email == "" {
		return model.UserResponse{}, apierror.BadRequest("username, password and email are required", "")
	}

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return model.UserResponse{}, err
	} else if exists {
		return model.UserResponse{}, model.ErrDuplicateUsername
	}

	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return model.UserResponse{}, err
	} else if exists {
		return model.UserResponse{}, model.ErrDuplicateEmail
	}

	roles, err := s.resolveRoles(ctx, req.RoleIDs)
	if err != nil {
		return model.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Fullname:     strings.TrimSpace(req.Fullname),
		IsActive:     active,
		Roles:        roles,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return model.UserResponse{}, err
	}
	return s.toResponse(ctx, created), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}
	return s.toResponse(ctx, user), nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (model.UserResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return model.UserResponse{}, err
	}
	return s.toResponse(ctx, user), nil
}

func (s *UserService) List(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, users), nil
}

// Update merges only the fields present in the request into the stored
// user, re-running uniqueness checks for any changed identity field.
func (s *UserService) Update(ctx context.Context, id int64, req model.UserUpdateRequest) (model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != "" && !strings.EqualFold(username, user.Username) {
			if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
				return model.UserResponse{}, err
			} else if exists {
				return model.UserResponse{}, model.ErrDuplicateUsername
			}
			user.Username = username
		}
	}

	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(*req.Password)), bcryptCost)
		if err != nil {
			return model.UserResponse{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.EqualFold(email, user.Email) {
			if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
				return model.UserResponse{}, err
			} else if exists {
				return model.UserResponse{}, model.ErrDuplicateEmail
			}
			user.Email = email
		}
	}

	if req.Fullname != nil {
		user.Fullname = strings.TrimSpace(*req.Fullname)
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if req.RoleIDs != nil {
		roles, err := s.resolveRoles(ctx, req.RoleIDs)
		if err != nil {
			return model.UserResponse{}, err
		}
		if err := s.users.ReplaceRoles(ctx, user.ID, req.RoleIDs); err != nil {
			return model.UserResponse{}, err
		}
		user.Roles = roles
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return model.UserResponse{}, err
	}
	return s.toResponse(ctx, updated), nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

func (s *UserService) AssignRoles(ctx context.Context, id int64, roleIDs []int64) (model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}

	roles, err := s.resolveRoles(ctx, roleIDs)
	if err != nil {
		return model.UserResponse{}, err
	}

	if err := s.users.ReplaceRoles(ctx, user.ID, roleIDs); err != nil {
		return model.UserResponse{}, err
	}

	user.Roles = roles
	return s.toResponse(ctx, user), nil
}

func (s *UserService) ListByRole(ctx context.Context, roleName string) ([]model.UserResponse, error) {
	users, err := s.users.FindByRoleName(ctx, strings.TrimSpace(roleName))
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, users), nil
}

func (s *UserService) ListActive(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.FindByActive(ctx, true)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, users), nil
}

func (s *UserService) Search(ctx context.Context, keyword string) ([]model.UserResponse, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apierror.BadRequest("keyword is required", "keyword")
	}

	users, err := s.users.SearchByKeyword(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, users), nil
}

func (s *UserService) ToggleStatus(ctx context.Context, id int64) (model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}

	user.IsActive = !user.IsActive
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return model.UserResponse{}, err
	}
	return s.toResponse(ctx, updated), nil
}

func (s *UserService) resolveRoles(ctx context.Context, roleIDs []int64) ([]model.Role, error) {
	roles := make([]model.Role, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role, err := s.roles.FindByID(ctx, roleID)
		if errors.Is(err, model.ErrRoleNotFound) {
			// A bad role reference is a client mistake, not a missing
			// resource on this endpoint.
			return nil, apierror.BadRequest("referenced role not found", strconv.FormatInt(roleID, 10))
		}
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (s *UserService) toResponse(ctx context.Context, user model.User) model.UserResponse {
	resp := model.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Fullname:  user.Fullname,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Roles:     make([]model.RoleSummary, 0, len(user.Roles)),
	}
	for _, role := range user.Roles {
		resp.Roles = append(resp.Roles, model.RoleSummary{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
		})
	}

	if user.StudentID != nil {
		// Best effort; a dangling link must not break user reads.
		if student, err := s.students.FindByID(ctx, *user.StudentID); err == nil {
			resp.Student = &model.StudentBasicInfo{
				ID:          student.ID,
				StudentCode: student.StudentCode,
				Fullname:    student.Fullname,
				Email:       student.Email,
			}
		}
	}
	return resp
}

func (s *UserService) toResponses(ctx context.Context, users []model.User) []model.UserResponse {
	out := make([]model.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, s.toResponse(ctx, user))
	}
	return out
}
