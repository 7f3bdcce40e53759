package petcare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/petcare/internal/category"
	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/recurrence"
	"github.com/dukerupert/petcare/internal/repository"
)

// maxRollCatchUp bounds how many missed periods one roll materialises per item.
const maxRollCatchUp = 366

func (s *Service) prepareRecurringExpense(e *model.RecurringExpense) {
	if e.NextDueDate == "" {
		e.NextDueDate = e.StartDate
	}
	if e.Meta.ID == "" {
		e.IsActive = true
	}
	if e.Category == "" {
		e.Category = category.Suggest(e.Description, e.Vendor)
	}
}

// RollRecurringExpenses records an Expense for every period of an active
// recurring expense that has come due, advances its next due date and
// deactivates it once the end date has passed. It returns how many expenses
// were created.
//
// Each item's expenses and its advanced due date are committed in one batch,
// and concurrent rolls are serialised, so a failed or repeated roll never
// records a period twice.
func (s *Service) RollRecurringExpenses(ctx context.Context) (int, error) {
	s.rollMu.Lock()
	defer s.rollMu.Unlock()

	items, err := s.repos.RecurringExpenses.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	today := model.DateOf(s.today())

	created := 0
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		n, err := s.rollOne(ctx, item.ID, today)
		created += n
		if err != nil {
			return created, fmt.Errorf("roll recurring expense %s: %w", item.ID, err)
		}
	}
	if created > 0 {
		s.logger.Info("recurring expenses rolled", "created", created)
		s.broadcast("expense", "rolled", "", "")
	}
	return created, nil
}

// rollOne re-reads the item under both collection locks so an edit made since
// the listing is neither lost nor rolled from a stale due date.
func (s *Service) rollOne(ctx context.Context, id string, today model.Date) (int, error) {
	created := 0
	err := s.repos.Expenses.Locked(func() error {
		return s.repos.RecurringExpenses.Locked(func() error {
			cur, err := s.repos.RecurringExpenses.GetByID(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			re := *cur
			if !re.IsActive {
				return nil
			}
			exps, changed, err := s.plan(&re, today)
			if err != nil || !changed {
				return err
			}

			var staged []repository.Staged
			if len(exps) > 0 {
				ptrs := make([]*model.Expense, len(exps))
				for i := range exps {
					ptrs[i] = &exps[i]
				}
				st, err := s.repos.Expenses.StageSave(ctx, ptrs...)
				if err != nil {
					return err
				}
				staged = append(staged, st)
			}
			st, err := s.repos.RecurringExpenses.StageSave(ctx, &re)
			if err != nil {
				return err
			}
			staged = append(staged, st)
			if err := s.repos.Commit(ctx, staged); err != nil {
				return err
			}
			created = len(exps)
			return nil
		})
	})
	return created, err
}

// plan lists the expenses due for re up to today and advances re in place.
// changed reports whether re needs saving.
func (s *Service) plan(re *model.RecurringExpense, today model.Date) ([]model.Expense, bool, error) {
	freq, err := recurrence.Parse(string(re.Frequency))
	if err != nil || freq == recurrence.None {
		return nil, false, fmt.Errorf("frequency %q: %w", re.Frequency, ErrInvalidInput)
	}
	start, err := re.StartDate.In(time.UTC)
	if err != nil {
		return nil, false, err
	}
	due := re.NextDueDate
	if due == "" {
		due = re.StartDate
	}
	next, err := due.In(time.UTC)
	if err != nil {
		return nil, false, err
	}

	var exps []model.Expense
	for steps := 0; steps < maxRollCatchUp; steps++ {
		d := model.DateOf(next)
		if d > today || (re.EndDate != "" && d > re.EndDate) {
			break
		}
		exps = append(exps, model.Expense{
			PetID:       re.PetID,
			Category:    re.Category,
			Amount:      re.Amount,
			Date:        d,
			Description: re.Description,
			Vendor:      re.Vendor,
		})
		next = recurrence.Advance(next, freq, start.Day())
	}

	changed := len(exps) > 0
	if nd := model.DateOf(next); nd != re.NextDueDate {
		re.NextDueDate = nd
		changed = true
	}
	if re.EndDate != "" && re.NextDueDate > re.EndDate {
		re.IsActive = false
		changed = true
	}
	return exps, changed, nil
}
