package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/reconcile"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

func newSlotCmd(now func() time.Time) *cobra.Command {
	var schedule, at string
	cmd := &cobra.Command{
		Use:     "slot",
		Short:   "Show the closest and next scheduled slot for a time",
		Example: `  medcheck slot --schedule 09:00,21:00 --time 23:55`,
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := domain.ParseSchedule(strings.Split(schedule, ","))
			if err != nil {
				return err
			}
			t, err := services.ResolveNow(now(), at)
			if err != nil {
				return err
			}
			tod := domain.TimeOfDayOf(t)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Schedule: %s\n", joinTimes(slots))
			fmt.Fprintf(w, "Time:     %s\n", tod)

			match, ok := reconcile.ClosestScheduledSlot(slots, tod)
			if !ok {
				fmt.Fprintln(w, "No scheduled times.")
				return nil
			}
			window := "outside"
			if match.WithinWindow() {
				window = "inside"
			}
			fmt.Fprintf(w, "Closest:  %s (%d min, %s the %d min window)\n", match.Slot, match.DeltaMinutes, window, reconcile.WindowMinutes)
			if next, ok := reconcile.NextScheduledSlot(slots, tod); ok {
				fmt.Fprintf(w, "Next:     %s\n", next)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "Comma-separated times, e.g. 09:00,21:00 (required)")
	cmd.Flags().StringVar(&at, "time", "", "Time of day, HH:MM (default now)")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}
