// Package stats computes spending and vaccine compliance rollups.
package stats

import (
	"sort"
	"time"

	"github.com/dukerupert/petcare/internal/model"
	"github.com/dukerupert/petcare/internal/status"
)

// NoCategory is reported when there are no expenses to rank.
const NoCategory = "N/A"

type CategoryTotal struct {
	Category model.ExpenseCategory `json:"category"`
	Total    float64               `json:"total"`
	Count    int                   `json:"count"`
}

type PetStatistics struct {
	PetID                 string          `json:"pet_id"`
	TotalSpent            float64         `json:"total_spent"`
	AverageMonthlyExpense float64         `json:"average_monthly_expense"`
	MostExpensiveCategory string          `json:"most_expensive_category"`
	TotalExpenses         int             `json:"total_expenses"`
	HealthComplianceRate  float64         `json:"health_compliance_rate"`
	Categories            []CategoryTotal `json:"categories"`
}

type OverallStatistics struct {
	TotalPets                int             `json:"total_pets"`
	TotalSpentAll            float64         `json:"total_spent_all"`
	AverageMonthlyExpenseAll float64         `json:"average_monthly_expense_all"`
	MostExpensiveCategoryAll string          `json:"most_expensive_category_all"`
	TotalExpensesAll         int             `json:"total_expenses_all"`
	OverallHealthCompliance  float64         `json:"overall_health_compliance"`
	Categories               []CategoryTotal `json:"categories"`
	PetStatistics            []PetStatistics `json:"pet_statistics"`
}

// ForPet computes one pet's statistics from full collection snapshots.
func ForPet(petID string, expenses []model.Expense, vaccines []model.Vaccine, now time.Time) PetStatistics {
	var es []model.Expense
	for _, e := range expenses {
		if e.PetID == petID {
			es = append(es, e)
		}
	}
	var vs []model.Vaccine
	for _, v := range vaccines {
		if v.PetID == petID {
			vs = append(vs, v)
		}
	}

	cats := Categories(es)
	return PetStatistics{
		PetID:                 petID,
		TotalSpent:            total(es),
		AverageMonthlyExpense: AverageMonthly(es, now),
		MostExpensiveCategory: mostExpensive(cats),
		TotalExpenses:         len(es),
		HealthComplianceRate:  Compliance(vs, now),
		Categories:            cats,
	}
}

// Overall aggregates across every pet and includes each pet's own breakdown.
func Overall(pets []model.Pet, expenses []model.Expense, vaccines []model.Vaccine, now time.Time) OverallStatistics {
	cats := Categories(expenses)
	out := OverallStatistics{
		TotalPets:                len(pets),
		TotalSpentAll:            total(expenses),
		AverageMonthlyExpenseAll: AverageMonthly(expenses, now),
		MostExpensiveCategoryAll: mostExpensive(cats),
		TotalExpensesAll:         len(expenses),
		OverallHealthCompliance:  Compliance(vaccines, now),
		Categories:               cats,
		PetStatistics:            make([]PetStatistics, 0, len(pets)),
	}
	for _, p := range pets {
		out.PetStatistics = append(out.PetStatistics, ForPet(p.ID, expenses, vaccines, now))
	}
	return out
}

func total(es []model.Expense) float64 {
	var sum float64
	for _, e := range es {
		sum += e.Amount
	}
	return sum
}

// AverageMonthly averages spend over the months of the trailing year that have
// at least one expense. Zero when there are none.
func AverageMonthly(es []model.Expense, now time.Time) float64 {
	cutoff := now.AddDate(0, -12, 0)
	months := make(map[string]struct{})
	var sum float64
	for _, e := range es {
		d, err := e.Date.In(now.Location())
		if err != nil || !d.After(cutoff) {
			continue
		}
		months[d.Format("2006-01")] = struct{}{}
		sum += e.Amount
	}
	if len(months) == 0 {
		return 0
	}
	return sum / float64(len(months))
}

// Categories totals spend per category, highest first. Equal totals keep the
// order in which categories were first seen.
func Categories(es []model.Expense) []CategoryTotal {
	idx := make(map[model.ExpenseCategory]int)
	out := []CategoryTotal{}
	for _, e := range es {
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category})
		}
		out[i].Total += e.Amount
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Total > out[b].Total })
	return out
}

func mostExpensive(cats []CategoryTotal) string {
	if len(cats) == 0 {
		return NoCategory
	}
	return string(cats[0].Category)
}

// Compliance is the percentage of vaccines that are completed or upcoming.
// With no vaccines the pet counts as fully compliant.
func Compliance(vs []model.Vaccine, now time.Time) float64 {
	if len(vs) == 0 {
		return 100
	}
	ok := 0
	for _, v := range vs {
		if status.Vaccine(v.NextDueDate, v.DateAdministered, now) != model.VaccineOverdue {
			ok++
		}
	}
	return float64(ok) / float64(len(vs)) * 100
}
