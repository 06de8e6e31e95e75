package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

type checkRequest struct {
	Image string `json:"image"` // data URL or bare base64
	Name  string `json:"name"`
	Time  string `json:"time"` // optional "HH:MM"
}

type decisionResponse struct {
	Status              domain.DoseStatus `json:"status"`
	RecognizedName      string            `json:"recognizedName"`
	MatchedMedicationID *string           `json:"matchedMedicationId"`
	MatchedName         string            `json:"matchedName,omitempty"`
	MatchedDosage       string            `json:"matchedDosage,omitempty"`
	MatchedSlot         *domain.TimeOfDay `json:"matchedSlot"`
	NextScheduledTime   *domain.TimeOfDay `json:"nextScheduledTime"`
	SafeToTake          bool              `json:"safeToTake"`
	Summary             string            `json:"summary"`
	Recommendations     []string          `json:"recommendations"`
	CheckedAt           time.Time         `json:"checkedAt"`
}

type doseRequest struct {
	MedicationID string `json:"medicationId"`
	Time         string `json:"time"` // optional "HH:MM", defaults to now
}

type imageRequest struct {
	Image string `json:"image"`
}

type speakRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !s.decode(w, r, &req) {
		return
	}

	now, err := services.ResolveNow(s.deps.Now(), req.Time)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}

	var result services.CheckResult
	switch {
	case strings.TrimSpace(req.Image) != "":
		image, err := decodeImage(req.Image)
		if err != nil {
			s.respondAppError(w, r, err)
			return
		}
		result, err = s.deps.Checks.Check(r.Context(), image, now)
		if err != nil {
			s.respondAppError(w, r, err)
			return
		}
	case strings.TrimSpace(req.Name) != "":
		result, err = s.deps.Checks.CheckName(r.Context(), req.Name, now)
		if err != nil {
			s.respondAppError(w, r, err)
			return
		}
	default:
		s.respondError(w, http.StatusBadRequest, "image or name is required")
		return
	}

	s.respondJSON(w, http.StatusOK, toDecisionResponse(result))
}

func (s *Server) handleListMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := s.deps.Medications.List(r.Context())
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, meds)
}

func (s *Server) handleGetMedication(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Medications.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleCreateMedication(w http.ResponseWriter, r *http.Request) {
	var in services.MedicationInput
	if !s.decode(w, r, &in) {
		return
	}
	m, err := s.deps.Medications.Create(r.Context(), in)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMedication(w http.ResponseWriter, r *http.Request) {
	var in services.MedicationInput
	if !s.decode(w, r, &in) {
		return
	}
	m, err := s.deps.Medications.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMedication(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Medications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScanPrescription(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !s.decode(w, r, &req) {
		return
	}
	image, err := decodeImage(req.Image)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	result, err := s.deps.Medications.ImportPrescription(r.Context(), image)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTodayLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.deps.Doses.TodayLog(r.Context())
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, log)
}

func (s *Server) handleRecordDose(w http.ResponseWriter, r *http.Request) {
	var req doseRequest
	if !s.decode(w, r, &req) {
		return
	}
	record, err := s.deps.Doses.RecordDose(r.Context(), req.MedicationID, req.Time)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, record)
}

func (s *Server) handleDeleteDose(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Doses.DeleteDose(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "Text to speak is required.")
		return
	}
	if s.deps.Narrator == nil {
		s.respondError(w, http.StatusServiceUnavailable, "speech is not configured")
		return
	}

	audio, err := s.deps.Narrator.Synthesize(r.Context(), req.Text)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", "attachment; filename=speech.mp3")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondAppError maps the error taxonomy onto HTTP status codes. Upstream
// failures get the generic retry message, never the provider's error text.
func (s *Server) respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.errors.Handle(r.Context(), err)
	}
	s.respondError(w, status, apperrors.UserMessage(err))
}

// decodeImage accepts "data:image/png;base64,..." or bare base64 (assumed JPEG).
func decodeImage(s string) (domain.Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Image{}, apperrors.NewValidationError("Image is required")
	}

	mime := "image/jpeg"
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return domain.Image{}, apperrors.NewValidationError("Image must be a base64 data URL")
		}
		if m := strings.TrimSuffix(header, ";base64"); m != "" {
			mime = m
		}
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return domain.Image{}, apperrors.NewValidationError("Image is not valid base64")
	}
	return domain.Image{Data: data, MIMEType: mime}, nil
}

func toDecisionResponse(res services.CheckResult) decisionResponse {
	d := res.Decision
	out := decisionResponse{
		Status:            d.Status,
		RecognizedName:    res.RecognizedName,
		MatchedName:       d.MatchedName,
		MatchedDosage:     d.MatchedDosage,
		MatchedSlot:       d.MatchedSlot,
		NextScheduledTime: d.NextScheduledTime,
		SafeToTake:        d.SafeToTake(),
		Summary:           d.Summary,
		Recommendations:   d.Recommendations,
		CheckedAt:         res.CheckedAt,
	}
	if d.Matched() {
		id := d.MatchedMedicationID
		out.MatchedMedicationID = &id
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return out
}
