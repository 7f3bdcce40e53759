package recurrence

import (
	"fmt"
	"strings"
)

type Freq int

const (
	None Freq = iota
	Weekly
	Monthly
	Yearly
)

var freqNames = map[Freq]string{
	None:    "none",
	Weekly:  "weekly",
	Monthly: "monthly",
	Yearly:  "yearly",
}

var freqFromName = map[string]Freq{
	"":        None,
	"none":    None,
	"weekly":  Weekly,
	"monthly": Monthly,
	"yearly":  Yearly,
}

// Parse maps a stored repeat option to a Freq. The empty string means None.
func Parse(s string) (Freq, error) {
	f, ok := freqFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return None, fmt.Errorf("unknown repeat option: %q", s)
	}
	return f, nil
}

func (f Freq) String() string {
	return freqNames[f]
}

// MaxOccurrences is how many instants a series schedules ahead.
func (f Freq) MaxOccurrences() int {
	switch f {
	case Weekly:
		return 52
	case Monthly:
		return 12
	}
	return 1
}

// Describe returns a human-readable description of the repeat policy.
func (f Freq) Describe() string {
	switch f {
	case Weekly:
		return "Repeats weekly"
	case Monthly:
		return "Repeats monthly"
	case Yearly:
		return "Repeats yearly"
	}
	return "Does not repeat"
}
