package status

import (
	"fmt"
	"time"

	"github.com/dukerupert/petcare/internal/model"
)

// Age is a pet's age in whole years plus remaining whole months.
type Age struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// AgeOf computes the age at now of a pet born on dob.
func AgeOf(dob model.Date, now time.Time) (Age, error) {
	born, err := dob.In(now.Location())
	if err != nil {
		return Age{}, err
	}

	months := (now.Year()-born.Year())*12 + int(now.Month()) - int(born.Month())
	if now.Day() < born.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return Age{Years: months / 12, Months: months % 12}, nil
}

func (a Age) String() string {
	if a.Years == 0 {
		return plural(a.Months, "month")
	}
	if a.Months == 0 {
		return plural(a.Years, "year")
	}
	return plural(a.Years, "year") + ", " + plural(a.Months, "month")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
