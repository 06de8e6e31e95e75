package reconcile

import (
	"fmt"
	"strings"

	"github.com/vladimiradmaev/medication-helper/internal/domain"
)

// Facts are the literal values substituted into recommendation templates.
type Facts struct {
	MedicationName string
	Dosage         string
	Slot           string // matched slot, "HH:MM"
	NextTime       string // next scheduled slot, "HH:MM"
	LastTakenAt    string // time of today's earlier dose, "HH:MM"
}

// Label is the medication name followed by its dosage, when known.
func (f Facts) Label() string {
	return strings.TrimSpace(f.MedicationName + " " + f.Dosage)
}

// Phrase renders one line of text from facts.
type Phrase func(f Facts) string

// Template is the fixed text for one status.
type Template struct {
	Summary         Phrase
	Recommendations []Phrase
}

func literal(s string) Phrase {
	return func(Facts) string { return s }
}

var defaultTemplates = map[domain.DoseStatus]Template{
	domain.StatusScheduled: {
		Summary: func(f Facts) string {
			return fmt.Sprintf("It's time to take your %s.", f.Label())
		},
		Recommendations: []Phrase{
			literal("Remember to log this dose after you take it."),
			literal("Take with a full glass of water."),
		},
	},
	domain.StatusAlreadyTakenConflict: {
		Summary: func(f Facts) string {
			return fmt.Sprintf("You already took %s today at %s. Taking it again now could be an overdose.", f.Label(), f.LastTakenAt)
		},
		Recommendations: []Phrase{
			func(f Facts) string {
				return fmt.Sprintf("You already took this dose at %s; a second dose is dangerous.", f.LastTakenAt)
			},
			literal("Do not take this medication now unless instructed by your doctor."),
		},
	},
	domain.StatusWrongTime: {
		Summary: func(f Facts) string {
			return fmt.Sprintf("It is not the right time for %s.", f.Label())
		},
		Recommendations: []Phrase{
			func(f Facts) string {
				if f.NextTime == "" {
					return "This medication has no scheduled times. Add a schedule before taking it."
				}
				return fmt.Sprintf("Your next scheduled dose is at %s.", f.NextTime)
			},
			literal("Do not take this medication now unless instructed by your doctor."),
		},
	},
	domain.StatusUnrecognized: {
		Summary: literal("This medication is not on your list."),
		Recommendations: []Phrase{
			literal("Please ensure the medication label is clear in the photo."),
			literal("You can add this medication to your list manually if it's a new prescription."),
		},
	},
}

// Composer maps a status to its summary and ordered recommendations.
type Composer struct {
	templates map[domain.DoseStatus]Template
}

// NewComposer starts from the built-in templates; overrides replace or add statuses.
func NewComposer(overrides map[domain.DoseStatus]Template) *Composer {
	templates := make(map[domain.DoseStatus]Template, len(defaultTemplates)+len(overrides))
	for status, tpl := range defaultTemplates {
		templates[status] = tpl
	}
	for status, tpl := range overrides {
		templates[status] = tpl
	}
	return &Composer{templates: templates}
}

var defaultComposer = NewComposer(nil)

// Compose renders text for status. An unknown status yields the status name
// as summary and no recommendations.
func (c *Composer) Compose(status domain.DoseStatus, facts Facts) (string, []string) {
	tpl, ok := c.templates[status]
	if !ok {
		return string(status), nil
	}
	summary := ""
	if tpl.Summary != nil {
		summary = tpl.Summary(facts)
	}
	recommendations := make([]string, 0, len(tpl.Recommendations))
	for _, phrase := range tpl.Recommendations {
		recommendations = append(recommendations, phrase(facts))
	}
	return summary, recommendations
}
