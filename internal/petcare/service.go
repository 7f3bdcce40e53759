// Package petcare is the application layer: validation, referential checks,
// notification ordering and change broadcasts around the repositories.
package petcare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/petcare/internal/cascade"
	"github.com/dukerupert/petcare/internal/category"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/repository"
	"github.com/dukerupert/petcare/internal/status"
	"github.com/dukerupert/petcare/internal/websocket"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrPetNotFound  = errors.New("pet not found")
)

// Broadcaster receives change notifications for connected clients.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

type Service struct {
	repos    *repository.Set
	sched    *notify.Scheduler
	cascade  *cascade.Coordinator
	hub      Broadcaster
	validate *validator.Validate
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
	rollMu   sync.Mutex

	Vaccines          *Records[model.Vaccine]
	Expenses          *Records[model.Expense]
	Weights           *Records[model.Weight]
	Grooming          *Records[model.GroomingRecord]
	Activities        *Records[model.ActivityLog]
	Insurance         *Records[model.Insurance]
	Claims            *Records[model.InsuranceClaim]
	MedicalRecords    *Records[model.MedicalRecord]
	RecurringExpenses *Records[model.RecurringExpense]
	Vets              *Records[model.Vet]
}

// NewService wires the application layer. hub may be nil.
func NewService(repos *repository.Set, sched *notify.Scheduler, coord *cascade.Coordinator, hub Broadcaster, logger *slog.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		repos:    repos,
		sched:    sched,
		cascade:  coord,
		hub:      hub,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "petcare"),
		loc:      loc,
		now:      time.Now,
	}

	s.Vaccines = newRecords[model.Vaccine](s, "vaccine", repos.Vaccines)
	s.Expenses = newRecords[model.Expense](s, "expense", repos.Expenses)
	s.Expenses.prepare = func(e *model.Expense) {
		if e.Category == "" {
			e.Category = category.Suggest(e.Description, e.Vendor)
		}
	}
	s.Weights = newRecords[model.Weight](s, "weight", repos.Weights)
	s.Grooming = newRecords[model.GroomingRecord](s, "grooming", repos.Grooming)
	s.Activities = newRecords[model.ActivityLog](s, "activity", repos.Activities)
	s.Insurance = newRecords[model.Insurance](s, "insurance", repos.Insurance)
	s.Claims = newRecords[model.InsuranceClaim](s, "insurance_claim", repos.Claims)
	s.Claims.check = s.claimPolicyExists
	s.MedicalRecords = newRecords[model.MedicalRecord](s, "medical_record", repos.MedicalRecords)
	s.RecurringExpenses = newRecords[model.RecurringExpense](s, "recurring_expense", repos.RecurringExpenses)
	s.RecurringExpenses.prepare = s.prepareRecurringExpense
	s.Vets = newRecords[model.Vet](s, "vet", repos.Vets)
	return s
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s *Service) requirePet(ctx context.Context, petID string) error {
	if _, err := s.repos.Pets.GetByID(ctx, petID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPetNotFound, petID)
		}
		return err
	}
	return nil
}

func (s *Service) claimPolicyExists(ctx context.Context, c *model.InsuranceClaim) error {
	if _, err := s.repos.Insurance.GetByID(ctx, c.InsuranceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: insurance %s", ErrInvalidInput, c.InsuranceID)
		}
		return err
	}
	return nil
}

func (s *Service) broadcast(entity, action, id, petID string) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(websocket.NewMessage(entity, action, id, nil).ForPet(petID))
}

// Pets

func (s *Service) ListPets(ctx context.Context) ([]model.Pet, error) {
	return s.repos.Pets.GetAll(ctx)
}

func (s *Service) GetPet(ctx context.Context, id string) (*model.Pet, error) {
	return s.repos.Pets.GetByID(ctx, id)
}

func (s *Service) CreatePet(ctx context.Context, p *model.Pet) error {
	p.ID = ""
	if err := s.check(p); err != nil {
		return err
	}
	if err := s.repos.Pets.Save(ctx, p); err != nil {
		return fmt.Errorf("create pet: %w", err)
	}
	s.broadcast("pet", "created", p.ID, p.ID)
	return nil
}

func (s *Service) UpdatePet(ctx context.Context, id string, p *model.Pet) error {
	if _, err := s.repos.Pets.GetByID(ctx, id); err != nil {
		return err
	}
	p.ID = id
	if err := s.check(p); err != nil {
		return err
	}
	if err := s.repos.Pets.Save(ctx, p); err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	s.broadcast("pet", "updated", p.ID, p.ID)
	return nil
}

// DeletePet runs the cascade: alarms are cancelled and dependents purged before
// the pet itself is removed.
func (s *Service) DeletePet(ctx context.Context, id string) (cascade.Report, error) {
	rep, err := s.cascade.DeletePet(ctx, id)
	if err != nil {
		return rep, err
	}
	s.broadcast("pet", "deleted", id, id)
	return rep, nil
}

// PetAge returns the pet's age as of today.
func (s *Service) PetAge(ctx context.Context, id string) (status.Age, error) {
	p, err := s.repos.Pets.GetByID(ctx, id)
	if err != nil {
		return status.Age{}, err
	}
	return status.AgeOf(p.DateOfBirth, s.today())
}

// Reconcile removes records orphaned by an interrupted cascade.
func (s *Service) Reconcile(ctx context.Context) (cascade.Report, error) {
	return s.cascade.Reconcile(ctx)
}

// Settings

func (s *Service) GetSettings(ctx context.Context) (model.Settings, error) {
	return s.repos.Settings.Get(ctx)
}

// UpdateSettings stores new settings. Turning notifications off cancels every
// pending alarm.
func (s *Service) UpdateSettings(ctx context.Context, next model.Settings) error {
	if err := s.check(next); err != nil {
		return err
	}
	prev, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return err
	}
	if err := s.repos.Settings.Save(ctx, next); err != nil {
		return err
	}
	if prev.NotificationsEnabled && !next.NotificationsEnabled {
		s.logger.Info("notifications disabled, cancelling pending alarms")
		s.sched.CancelAll(ctx)
	}
	s.broadcast("settings", "updated", "", "")
	return nil
}
