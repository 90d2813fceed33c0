package employee

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"timetrack/internal/apperror"
	"timetrack/internal/auth"
	"timetrack/internal/model"
	"timetrack/internal/policy"
)

// CreateInput carries a new account. ID is generated when blank.
type CreateInput struct {
	ID         string
	Email      string
	Password   string
	Name       string
	Surname    string
	Role       string
	Department string
}

// UpdateInput carries a partial profile update. Nil fields are left alone.
type UpdateInput struct {
	Name       *string
	Surname    *string
	Email      *string
	Password   *string
	Role       *string
	Department *string
}

// Service manages employees and departments on behalf of an actor.
type Service struct {
	store  Store
	policy *policy.Policy
}

func NewService(store Store, p *policy.Policy) *Service {
	return &Service{store: store, policy: p}
}

// Create adds an account. Administrator only.
func (s *Service) Create(ctx context.Context, actor model.Employee, in CreateInput) (model.Employee, error) {
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.CreateEmployee, policy.Target{}).Err(); err != nil {
		return model.Employee{}, err
	}
	return s.create(ctx, in, model.EmployeePending)
}

// Bootstrap creates an approved administrator without an acting user. It
// is meant for seeding an empty system.
func (s *Service) Bootstrap(ctx context.Context, in CreateInput) (model.Employee, error) {
	in.Role = string(model.RoleAdministrator)
	return s.create(ctx, in, model.EmployeeApproved)
}

// EnsureAdmin bootstraps the administrator described by in unless an
// account with that email already exists. It reports whether one was
// created.
func (s *Service) EnsureAdmin(ctx context.Context, in CreateInput) (model.Employee, bool, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return model.Employee{}, false, err
	}
	existing, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if apperror.GetCode(err) != apperror.CodeNotFound {
		return model.Employee{}, false, fmt.Errorf("lookup administrator: %w", err)
	}
	created, err := s.Bootstrap(ctx, in)
	if err != nil {
		return model.Employee{}, false, err
	}
	return created, true, nil
}

func (s *Service) create(ctx context.Context, in CreateInput, status model.EmployeeStatus) (model.Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	if strings.TrimSpace(in.Email) == "" || in.Password == "" || in.Name == "" || in.Surname == "" {
		return model.Employee{}, apperror.Validation("email, password, name and surname are required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return model.Employee{}, err
	}
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return model.Employee{}, apperror.Validation(err.Error())
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.Employee{}, err
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = newEmployeeID()
	}

	created, err := s.store.Create(ctx, model.Employee{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		Surname:      in.Surname,
		Role:         role,
		Department:   strings.TrimSpace(in.Department),
		Status:       status,
	})
	if err != nil {
		return model.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return created, nil
}

// Get returns one employee visible to actor.
func (s *Service) Get(ctx context.Context, actor model.Employee, id string) (model.Employee, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Employee{}, err
	}
	target := policy.Target{EmployeeID: e.ID, Department: e.Department}
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.ViewEmployees, target).Err(); err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

// List returns employees visible to actor. Administrators see everyone;
// managers see only the employee-role accounts of their own department,
// whatever f asks for.
func (s *Service) List(ctx context.Context, actor model.Employee, f Filter) ([]model.Employee, error) {
	a := policy.ActorFrom(actor)
	switch actor.Role {
	case model.RoleAdministrator:
		if err := s.policy.Authorize(a, policy.ViewAllEmployees, policy.Target{}).Err(); err != nil {
			return nil, err
		}
	default:
		if err := s.policy.Authorize(a, policy.ViewEmployees, policy.Target{Department: actor.Department}).Err(); err != nil {
			return nil, err
		}
		f.Department = actor.Department
		f.Role = model.RoleEmployee
	}
	return s.store.List(ctx, f)
}

// Update applies a profile change. Employees may edit their own name,
// surname, email and password; role and department are administrator only.
func (s *Service) Update(ctx context.Context, actor model.Employee, id string, in UpdateInput) (model.Employee, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Employee{}, err
	}
	a := policy.ActorFrom(actor)
	if err := s.policy.Authorize(a, policy.UpdateEmployee, policy.Target{EmployeeID: e.ID, Department: e.Department}).Err(); err != nil {
		return model.Employee{}, err
	}
	if in.Role != nil || in.Department != nil {
		if err := s.policy.Authorize(a, policy.UpdateEmployeeRole, policy.Target{EmployeeID: e.ID}).Err(); err != nil {
			return model.Employee{}, err
		}
	}

	if in.Name != nil {
		if e.Name = strings.TrimSpace(*in.Name); e.Name == "" {
			return model.Employee{}, apperror.Validation("name cannot be empty")
		}
	}
	if in.Surname != nil {
		if e.Surname = strings.TrimSpace(*in.Surname); e.Surname == "" {
			return model.Employee{}, apperror.Validation("surname cannot be empty")
		}
	}
	if in.Email != nil {
		if e.Email, err = normalizeEmail(*in.Email); err != nil {
			return model.Employee{}, err
		}
	}
	if in.Role != nil {
		role, err := model.ParseRole(*in.Role)
		if err != nil {
			return model.Employee{}, apperror.Validation(err.Error())
		}
		e.Role = role
	}
	if in.Department != nil {
		e.Department = strings.TrimSpace(*in.Department)
	}
	if in.Password != nil {
		if e.PasswordHash, err = auth.HashPassword(*in.Password); err != nil {
			return model.Employee{}, err
		}
	}

	// profile and password land in one write
	updated, err := s.store.Update(ctx, e)
	if err != nil {
		return model.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return updated, nil
}

// SetStatus approves or rejects an account's onboarding.
func (s *Service) SetStatus(ctx context.Context, actor model.Employee, id, status string) (model.Employee, error) {
	st, err := model.ParseEmployeeStatus(status)
	if err != nil {
		return model.Employee{}, apperror.Validation(err.Error())
	}
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Employee{}, err
	}
	target := policy.Target{EmployeeID: e.ID, Department: e.Department, Role: e.Role}
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.UpdateEmployeeStatus, target).Err(); err != nil {
		return model.Employee{}, err
	}
	e.Status = st
	return s.store.Update(ctx, e)
}

// CreateDepartment registers a department name. Administrator only.
func (s *Service) CreateDepartment(ctx context.Context, actor model.Employee, name string) (model.Department, error) {
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.ManageDepartments, policy.Target{}).Err(); err != nil {
		return model.Department{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Department{}, apperror.Validation("department name is required")
	}
	return s.store.CreateDepartment(ctx, name)
}

// ListDepartments returns all departments. Administrator only.
func (s *Service) ListDepartments(ctx context.Context, actor model.Employee) ([]model.Department, error) {
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.ManageDepartments, policy.Target{}).Err(); err != nil {
		return nil, err
	}
	return s.store.ListDepartments(ctx)
}

// DepartmentEmployees lists the employees whose department name matches a
// registered department.
func (s *Service) DepartmentEmployees(ctx context.Context, actor model.Employee, name string) ([]model.Employee, error) {
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.ViewEmployees, policy.Target{Department: name}).Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.FindDepartment(ctx, name); err != nil {
		return nil, err
	}
	f := Filter{Department: name}
	if actor.Role != model.RoleAdministrator {
		f.Role = model.RoleEmployee
	}
	return s.store.List(ctx, f)
}

// normalizeEmail lower-cases a bare address. Display-name forms such as
// "Bob <bob@example.com>" are rejected so the stored value is what login
// looks up.
func normalizeEmail(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.Validation("invalid email address")
	}
	return email, nil
}

func newEmployeeID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "EMP" + strings.ToUpper(hex[:12])
}
