package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/repository"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

type checkOptions struct {
	medsPath string
	name     string
	at       string
	taken    []string
	asJSON   bool
}

func newCheckCmd(now func() time.Time) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a medication may be taken now",
		Example: `  medcheck check --meds meds.yaml --name Metformin --time 09:15
  medcheck check --meds meds.yaml --name Metformin --time 21:05 --taken met@09:02`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, now())
		},
	}
	cmd.Flags().StringVar(&opts.medsPath, "meds", "", "YAML medication file (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Medication name to check (required)")
	cmd.Flags().StringVar(&opts.at, "time", "", "Time of day to check, HH:MM (default now)")
	cmd.Flags().StringArrayVar(&opts.taken, "taken", nil, "Dose already taken today, id@HH:MM (repeatable)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the decision as JSON")
	_ = cmd.MarkFlagRequired("meds")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions, now time.Time) error {
	meds, err := loadMedications(opts.medsPath)
	if err != nil {
		return err
	}

	checkAt, err := services.ResolveNow(now, opts.at)
	if err != nil {
		return err
	}

	var log []domain.DoseRecord
	for _, arg := range opts.taken {
		r, err := parseTaken(arg, meds, checkAt)
		if err != nil {
			return err
		}
		log = append(log, r)
	}

	stores := services.NewStores(repository.NewMemoryMedicationStore(meds...), repository.NewMemoryDoseLog(log...))
	res, err := services.NewCheckService(stores, nil).CheckName(cmd.Context(), opts.name, checkAt)
	if err != nil {
		return err
	}

	if opts.asJSON {
		return writeDecisionJSON(cmd.OutOrStdout(), res)
	}
	writeDecision(cmd.OutOrStdout(), res)
	return nil
}

func writeDecision(w io.Writer, res services.CheckResult) {
	d := res.Decision
	fmt.Fprintf(w, "Status:  %s\n", d.Status)
	if d.Matched() {
		fmt.Fprintf(w, "Match:   %s %s (%s)\n", d.MatchedName, d.MatchedDosage, d.MatchedMedicationID)
	}
	if d.MatchedSlot != nil {
		fmt.Fprintf(w, "Slot:    %s\n", d.MatchedSlot)
	}
	if d.NextScheduledTime != nil {
		fmt.Fprintf(w, "Next:    %s\n", d.NextScheduledTime)
	}
	fmt.Fprintf(w, "Summary: %s\n", d.Summary)
	for _, r := range d.Recommendations {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}

func writeDecisionJSON(w io.Writer, res services.CheckResult) error {
	d := res.Decision
	out := map[string]any{
		"status":            d.Status,
		"checkedAt":         domain.TimeOfDayOf(res.CheckedAt),
		"matchedMedication": nil,
		"matchedSlot":       d.MatchedSlot,
		"nextScheduledTime": d.NextScheduledTime,
		"summary":           d.Summary,
		"recommendations":   d.Recommendations,
	}
	if d.Matched() {
		out["matchedMedication"] = d.MatchedMedicationID
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func joinTimes(ts []domain.TimeOfDay) string {
	return strings.Join(domain.FormatSchedule(ts), ", ")
}
