// Package category suggests an expense category from free text.
package category

import (
	"strings"

	"github.com/dukerupert/petcare/internal/model"
)

// Suggest returns the expense category for a description and vendor.
// Matching is case-insensitive: exact match on the description first, then
// substring match over both fields. Falls back to other.
func Suggest(description, vendor string) model.ExpenseCategory {
	desc := strings.ToLower(strings.TrimSpace(description))
	if cat, ok := exactMatch[desc]; ok {
		return cat
	}

	text := desc + " " + strings.ToLower(strings.TrimSpace(vendor))
	if strings.TrimSpace(text) == "" {
		return model.ExpenseOther
	}
	for _, entry := range substringMatches {
		if strings.Contains(text, entry.keyword) {
			return entry.category
		}
	}
	return model.ExpenseOther
}

var exactMatch = map[string]model.ExpenseCategory{
	"kibble":      model.ExpenseFood,
	"food":        model.ExpenseFood,
	"treats":      model.ExpenseFood,
	"wet food":    model.ExpenseFood,
	"dry food":    model.ExpenseFood,
	"chews":       model.ExpenseFood,
	"litter":      model.ExpenseOther,
	"checkup":     model.ExpenseVet,
	"vaccination": model.ExpenseVet,
	"dental":      model.ExpenseVet,
	"x-ray":       model.ExpenseVet,
	"haircut":     model.ExpenseGrooming,
	"nail trim":   model.ExpenseGrooming,
	"bath":        model.ExpenseGrooming,
	"ball":        model.ExpenseToys,
	"chew toy":    model.ExpenseToys,
	"squeaky toy": model.ExpenseToys,
	"antibiotics": model.ExpenseMedicine,
	"flea drops":  model.ExpenseMedicine,
	"dewormer":    model.ExpenseMedicine,
}

type substringEntry struct {
	keyword  string
	category model.ExpenseCategory
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Medicine before vet so "flea treatment" is not read as a vet visit.
	{"heartworm", model.ExpenseMedicine},
	{"flea", model.ExpenseMedicine},
	{"tick", model.ExpenseMedicine},
	{"pharmacy", model.ExpenseMedicine},
	{"prescription", model.ExpenseMedicine},
	{"medication", model.ExpenseMedicine},
	{"pill", model.ExpenseMedicine},
	{"tablet", model.ExpenseMedicine},
	{"dewormer", model.ExpenseMedicine},
	{"supplement", model.ExpenseMedicine},

	{"veterinary", model.ExpenseVet},
	{"animal hospital", model.ExpenseVet},
	{"emergency", model.ExpenseVet},
	{"vaccin", model.ExpenseVet},
	{"booster", model.ExpenseVet},
	{"surgery", model.ExpenseVet},
	{"checkup", model.ExpenseVet},
	{"check-up", model.ExpenseVet},
	{"exam", model.ExpenseVet},
	{"clinic", model.ExpenseVet},
	{"spay", model.ExpenseVet},
	{"neuter", model.ExpenseVet},
	{"vet", model.ExpenseVet},

	{"groom", model.ExpenseGrooming},
	{"nail", model.ExpenseGrooming},
	{"haircut", model.ExpenseGrooming},
	{"shampoo", model.ExpenseGrooming},
	{"brush", model.ExpenseGrooming},
	{"bath", model.ExpenseGrooming},
	{"trim", model.ExpenseGrooming},

	{"chew toy", model.ExpenseToys},
	{"toy", model.ExpenseToys},
	{"ball", model.ExpenseToys},
	{"rope", model.ExpenseToys},
	{"frisbee", model.ExpenseToys},
	{"scratcher", model.ExpenseToys},
	{"squeak", model.ExpenseToys},

	{"kibble", model.ExpenseFood},
	{"treat", model.ExpenseFood},
	{"chew", model.ExpenseFood},
	{"food", model.ExpenseFood},
	{"feed", model.ExpenseFood},
	{"seed", model.ExpenseFood},
	{"hay", model.ExpenseFood},
	{"canned", model.ExpenseFood},
}
