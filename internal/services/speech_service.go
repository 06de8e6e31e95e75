package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

// SpeechService narrates decisions as MP3 using Google Cloud Text-to-Speech.
type SpeechService struct {
	svc          *texttospeech.Service
	languageCode string
	voice        string
}

// NewSpeechService uses the Google API key shared with Gemini; the key must
// have the Text-to-Speech API enabled.
func NewSpeechService(ctx context.Context, apiKey, languageCode, voice string) (*SpeechService, error) {
	svc, err := texttospeech.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &SpeechService{svc: svc, languageCode: languageCode, voice: voice}, nil
}

// Synthesize returns MP3 audio for text.
func (s *SpeechService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("Text to speak is required")
	}

	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: s.languageCode,
			Name:         s.voice,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}

	resp, err := s.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "text-to-speech")
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("failed to decode audio: %w", err), "text-to-speech")
	}
	logger.Debug("Speech synthesized", "chars", len(text), "bytes", len(audio))
	return audio, nil
}

// NarrationText joins a decision's summary and recommendations for reading aloud.
func NarrationText(summary string, recommendations []string) string {
	parts := append([]string{summary}, recommendations...)
	return strings.Join(parts, " ")
}
