package employee

import (
	"context"

	"github.com/google/uuid"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/internal/repository"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
)

type Service struct {
	repo repository.EmployeeRepository
}

func NewService(repo repository.EmployeeRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetEmployee(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context, p model.Pagination) ([]*model.Employee, int64, error) {
	return s.repo.List(ctx, p)
}

func (s *Service) UpdateEmployee(ctx context.Context, id uuid.UUID, req *model.UpdateEmployeeRequest) (*model.Employee, error) {
	if req.IsEmpty() {
		return nil, apperrors.BadRequest("empty body", nil)
	}

	emp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		emp.FullName = *req.FullName
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.Department != nil {
		emp.Department = *req.Department
	}
	if req.Position != nil {
		if *req.Position == "" {
			emp.Position = nil
		} else {
			emp.Position = req.Position
		}
	}
	if req.Notes != nil {
		emp.Notes = *req.Notes
	}
	if req.HiredAt != nil {
		emp.HiredAt = *req.HiredAt
	}
	if req.BirthdayAt != nil {
		emp.BirthdayAt = *req.BirthdayAt
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}
