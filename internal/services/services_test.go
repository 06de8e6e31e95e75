package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/repository"
)

var (
	today     = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	yesterday = today.AddDate(0, 0, -1)
)

func at(day time.Time, hhmm string) time.Time {
	return domain.MustParseTimeOfDay(hhmm).On(day)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func seedMedications() []domain.Medication {
	return []domain.Medication{
		{ID: "met", Name: "Metformin", Dosage: "500mg", Schedule: []domain.TimeOfDay{domain.MustParseTimeOfDay("09:00"), domain.MustParseTimeOfDay("21:00")}},
		{ID: "sal", Name: "Salbutamol", Dosage: "2 puffs", Schedule: []domain.TimeOfDay{domain.MustParseTimeOfDay("23:50")}},
	}
}

type fakeRecognizer struct {
	name  string
	err   error
	known []string
	calls int
}

func (f *fakeRecognizer) RecognizeMedication(ctx context.Context, image domain.Image, knownNames []string) (string, error) {
	f.calls++
	f.known = knownNames
	return f.name, f.err
}

type fakeReader struct {
	meds []domain.PrescribedMedication
	err  error
}

func (f *fakeReader) ExtractPrescription(ctx context.Context, image domain.Image) ([]domain.PrescribedMedication, error) {
	return f.meds, f.err
}

type failingSaveLog struct {
	*repository.MemoryDoseLog
}

func (failingSaveLog) Save(ctx context.Context, records []domain.DoseRecord) error {
	return errors.New("disk full")
}

var photo = domain.Image{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}

func newStores(log ...domain.DoseRecord) (*Stores, *repository.MemoryDoseLog) {
	doses := repository.NewMemoryDoseLog(log...)
	return NewStores(repository.NewMemoryMedicationStore(seedMedications()...), doses), doses
}

func TestSnapshot_prunesAndWritesBack(t *testing.T) {
	stores, doses := newStores(
		domain.DoseRecord{ID: "old", MedicationID: "met", TakenAt: at(yesterday, "21:00")},
		domain.DoseRecord{ID: "new", MedicationID: "met", TakenAt: at(today, "09:02")},
	)

	snap, err := stores.Snapshot(context.Background(), at(today, "10:00"))
	require.NoError(t, err)
	require.Len(t, snap.TodayLog, 1)
	assert.Equal(t, "new", snap.TodayLog[0].ID)
	assert.Len(t, snap.Medications, 2)

	stored, _ := doses.Load(context.Background())
	assert.Len(t, stored, 1)
	assert.Equal(t, 1, doses.Saves())

	// Nothing stale left: no second write.
	_, err = stores.Snapshot(context.Background(), at(today, "10:01"))
	require.NoError(t, err)
	assert.Equal(t, 1, doses.Saves())
}

func TestSnapshot_writeBackFailureIsNotFatal(t *testing.T) {
	log := failingSaveLog{repository.NewMemoryDoseLog(
		domain.DoseRecord{ID: "old", MedicationID: "met", TakenAt: at(yesterday, "09:00")},
	)}
	stores := NewStores(repository.NewMemoryMedicationStore(seedMedications()...), log)

	snap, err := stores.Snapshot(context.Background(), at(today, "09:00"))
	require.NoError(t, err)
	assert.Empty(t, snap.TodayLog)
}

func TestCheck_scheduled(t *testing.T) {
	stores, _ := newStores()
	rec := &fakeRecognizer{name: " metformin "}
	svc := NewCheckService(stores, rec)

	res, err := svc.Check(context.Background(), photo, at(today, "09:20"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Decision.Status)
	assert.Equal(t, "met", res.Decision.MatchedMedicationID)
	assert.Equal(t, "metformin", res.RecognizedName)
	assert.Equal(t, []string{"Metformin", "Salbutamol"}, rec.known)
}

func TestCheck_conflictFromTodayLogOnly(t *testing.T) {
	stores, _ := newStores(
		domain.DoseRecord{ID: "y", MedicationID: "met", TakenAt: at(yesterday, "09:00")},
	)
	svc := NewCheckService(stores, &fakeRecognizer{name: "Metformin"})

	res, err := svc.Check(context.Background(), photo, at(today, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Decision.Status)

	doses := NewDoseService(stores, fixedClock(at(today, "09:01")))
	_, err = doses.RecordDose(context.Background(), "met", "")
	require.NoError(t, err)

	res, err = svc.Check(context.Background(), photo, at(today, "09:10"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAlreadyTakenConflict, res.Decision.Status)
}

func TestCheck_unrecognized(t *testing.T) {
	stores, _ := newStores()
	svc := NewCheckService(stores, &fakeRecognizer{name: ""})

	res, err := svc.Check(context.Background(), photo, at(today, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnrecognized, res.Decision.Status)
	assert.Empty(t, res.Decision.MatchedMedicationID)
}

func TestCheck_recognizerFailure(t *testing.T) {
	stores, _ := newStores()
	svc := NewCheckService(stores, &fakeRecognizer{err: errors.New("quota exceeded")})

	_, err := svc.Check(context.Background(), photo, at(today, "09:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}

func TestCheck_emptyImage(t *testing.T) {
	stores, _ := newStores()
	rec := &fakeRecognizer{name: "Metformin"}
	svc := NewCheckService(stores, rec)

	_, err := svc.Check(context.Background(), domain.Image{}, at(today, "09:00"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, rec.calls)
}

func TestCheckName(t *testing.T) {
	stores, _ := newStores()
	svc := NewCheckService(stores, nil)

	res, err := svc.CheckName(context.Background(), "Salbutamol", at(today, "00:05"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Decision.Status)
	assert.Equal(t, "23:50", res.Decision.MatchedSlot.String())

	res, err = svc.CheckName(context.Background(), "Metformin", at(today, "12:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWrongTime, res.Decision.Status)
	assert.Equal(t, "21:00", res.Decision.NextScheduledTime.String())

	_, err = svc.CheckName(context.Background(), "  ", at(today, "12:00"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestResolveNow(t *testing.T) {
	now := at(today, "12:34")

	got, err := ResolveNow(now, "")
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ResolveNow(now, "9:15 pm")
	require.NoError(t, err)
	assert.Equal(t, at(today, "21:15"), got)

	_, err = ResolveNow(now, "25:00")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDoseService_recordListDelete(t *testing.T) {
	ctx := context.Background()
	stores, _ := newStores()
	svc := NewDoseService(stores, fixedClock(at(today, "21:05")))

	rec, err := svc.RecordDose(ctx, "met", "20:58")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Metformin", rec.Name)
	assert.Equal(t, "500mg", rec.Dosage)
	assert.Equal(t, at(today, "20:58"), rec.TakenAt)

	now, err := svc.RecordDose(ctx, "sal", "")
	require.NoError(t, err)
	assert.Equal(t, at(today, "21:05"), now.TakenAt)

	log, err := svc.TodayLog(ctx)
	require.NoError(t, err)
	assert.Len(t, log, 2)

	require.NoError(t, svc.DeleteDose(ctx, rec.ID))
	log, err = svc.TodayLog(ctx)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "sal", log[0].MedicationID)

	assert.ErrorIs(t, svc.DeleteDose(ctx, rec.ID), apperrors.ErrDoseNotFound)
}

func TestDoseService_validation(t *testing.T) {
	ctx := context.Background()
	stores, _ := newStores()
	svc := NewDoseService(stores, fixedClock(at(today, "09:00")))

	_, err := svc.RecordDose(ctx, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.RecordDose(ctx, "nope", "")
	assert.ErrorIs(t, err, apperrors.ErrMedicationNotFound)

	_, err = svc.RecordDose(ctx, "met", "9am")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDoseService_concurrentRecordsAllKept(t *testing.T) {
	ctx := context.Background()
	stores, _ := newStores()
	svc := NewDoseService(stores, fixedClock(at(today, "09:00")))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordDose(ctx, "met", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	log, err := svc.TodayLog(ctx)
	require.NoError(t, err)
	assert.Len(t, log, 20)
}

func TestMedicationService_CRUD(t *testing.T) {
	ctx := context.Background()
	stores, _ := newStores()
	svc := NewMedicationService(stores, nil)

	m, err := svc.Create(ctx, MedicationInput{Name: " Aspirin ", Dosage: "81mg", Schedule: []string{"8:00 AM", "", "20:00"}})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Aspirin", m.Name)
	assert.Equal(t, []string{"08:00", "20:00"}, domain.FormatSchedule(m.Schedule))

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	m, err = svc.Update(ctx, m.ID, MedicationInput{Name: "Aspirin", Dosage: "100mg", Schedule: []string{"09:00"}})
	require.NoError(t, err)
	assert.Equal(t, "100mg", m.Dosage)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	require.NoError(t, svc.Delete(ctx, m.ID))
	_, err = svc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, apperrors.ErrMedicationNotFound)
}

func TestMedicationService_validation(t *testing.T) {
	svc := NewMedicationService(NewStores(repository.NewMemoryMedicationStore(), repository.NewMemoryDoseLog()), nil)

	cases := map[string]MedicationInput{
		"no name":      {Dosage: "1"},
		"no dosage":    {Name: "A"},
		"bad schedule": {Name: "A", Dosage: "1", Schedule: []string{"noon"}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	_, err := svc.Update(context.Background(), "missing", MedicationInput{Name: "A", Dosage: "1"})
	assert.ErrorIs(t, err, apperrors.ErrMedicationNotFound)
}

func TestImportPrescription(t *testing.T) {
	ctx := context.Background()
	stores, _ := newStores()
	reader := &fakeReader{meds: []domain.PrescribedMedication{
		{Name: "METFORMIN", Dosage: "850mg", Schedule: []string{"08:00"}},
		{Name: "Lisinopril", Dosage: "10mg", Frequency: "once a day"},
		{Name: "Atorvastatin", Dosage: "20mg", Frequency: "twice a day"},
		{Name: "lisinopril", Dosage: "10mg", Schedule: []string{"10:00"}},
		{Name: "Ibuprofen", Dosage: "200mg", Schedule: []string{"after meals"}},
		{Name: "  "},
	}}
	svc := NewMedicationService(stores, reader)

	res, err := svc.ImportPrescription(ctx, photo)
	require.NoError(t, err)
	assert.Equal(t, 2, res.AddedCount)
	assert.Equal(t, 3, res.SkippedCount)
	assert.Equal(t, []string{"METFORMIN", "lisinopril", "Ibuprofen"}, res.Skipped)
	assert.Equal(t, []string{"09:00"}, domain.FormatSchedule(res.Added[0].Schedule))
	assert.Equal(t, []string{"09:00", "21:00"}, domain.FormatSchedule(res.Added[1].Schedule))

	list, _ := svc.List(ctx)
	assert.Len(t, list, 4)
}

func TestImportPrescription_emptyAndFailure(t *testing.T) {
	ctx := context.Background()
	stores, _ := newStores()

	res, err := NewMedicationService(stores, &fakeReader{}).ImportPrescription(ctx, photo)
	require.NoError(t, err)
	assert.True(t, res.Empty())

	_, err = NewMedicationService(stores, &fakeReader{err: errors.New("503")}).ImportPrescription(ctx, photo)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)

	_, err = NewMedicationService(stores, &fakeReader{}).ImportPrescription(ctx, domain.Image{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDefaultScheduleFor(t *testing.T) {
	assert.Equal(t, []string{"09:00"}, DefaultScheduleFor("Once a day"))
	assert.Equal(t, []string{"09:00", "21:00"}, DefaultScheduleFor("twice a day"))
	assert.Equal(t, []string{"08:00", "14:00", "20:00"}, DefaultScheduleFor("3 times daily"))
	assert.Nil(t, DefaultScheduleFor("as needed"))
	assert.Nil(t, DefaultScheduleFor(""))
}

func TestNarrationText(t *testing.T) {
	assert.Equal(t, "Take it. Drink water.", NarrationText("Take it.", []string{"Drink water."}))
	assert.Equal(t, "Only summary.", NarrationText("Only summary.", nil))
}
