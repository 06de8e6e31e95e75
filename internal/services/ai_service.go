package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"google.golang.org/api/option"
)

// visionModel answers a text prompt about one image.
type visionModel interface {
	Name() string
	Generate(ctx context.Context, image domain.Image, prompt string) (string, error)
}

// AIService reads medication photos with Gemini and falls back to OpenAI when
// an OpenAI key is configured.
type AIService struct {
	models []visionModel
	closer func() error
}

func NewAIService(ctx context.Context, geminiAPIKey, geminiModel, openaiAPIKey string) (*AIService, error) {
	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(geminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	models := []visionModel{&geminiVision{client: geminiClient, model: geminiModel}}
	if openaiAPIKey != "" {
		models = append(models, &openaiVision{client: openai.NewClient(openaiAPIKey), model: openai.GPT4VisionPreview})
	}

	return &AIService{models: models, closer: geminiClient.Close}, nil
}

func newAIServiceWithModels(models ...visionModel) *AIService {
	return &AIService{models: models}
}

func (s *AIService) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// RecognizeMedication returns the medication name printed on the package, or
// "" when the photo is unreadable.
func (s *AIService) RecognizeMedication(ctx context.Context, image domain.Image, knownNames []string) (string, error) {
	text, err := s.generate(ctx, image, recognitionPrompt(knownNames))
	if err != nil {
		return "", err
	}
	return parseRecognition(text)
}

// ExtractPrescription lists the medications written on a prescription.
func (s *AIService) ExtractPrescription(ctx context.Context, image domain.Image) ([]domain.PrescribedMedication, error) {
	text, err := s.generate(ctx, image, prescriptionPrompt)
	if err != nil {
		return nil, err
	}
	return parsePrescription(text)
}

func (s *AIService) generate(ctx context.Context, image domain.Image, prompt string) (string, error) {
	if len(s.models) == 0 {
		return "", errors.New("no vision model configured")
	}
	var errs []error
	for _, m := range s.models {
		text, err := m.Generate(ctx, image, prompt)
		if err == nil {
			return text, nil
		}
		logger.Warn("Vision model failed", "model", m.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", m.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

func recognitionPrompt(knownNames []string) string {
	known := "none"
	if len(knownNames) > 0 {
		known = strings.Join(knownNames, ", ")
	}
	return fmt.Sprintf(`You are a pharmacist assistant. Identify the single medication shown in the image.

REQUIREMENTS:
- Read the brand or generic name from the package, blister or label
- The user takes these medications: %s
- If the photo shows one of them, return that name exactly as written in the list
- Otherwise return the name printed on the package
- If no name can be read, return an empty string

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON object
- Do not include any explanatory text before or after the JSON
- The JSON must have this exact field:
  {
    "name": "Metformin"
  }`, known)
}

const prescriptionPrompt = `You are a pharmacist assistant. Read the prescription in the image and list every medication on it.

REQUIREMENTS:
- For each medication give its name, its dosage and how often it is taken
- Convert the frequency to daily times in 24h "HH:MM" format
- "once a day" means ["09:00"]
- "twice a day" means ["09:00", "21:00"]
- If the frequency is unclear, return an empty schedule

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON object
- Do not include any explanatory text before or after the JSON
- The JSON must have this exact shape:
  {
    "medications": [
      {"name": "Metformin", "dosage": "500mg", "frequency": "twice a day", "schedule": ["09:00", "21:00"]}
    ]
  }`

func parseRecognition(text string) (string, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return "", fmt.Errorf("no valid JSON found in response")
	}
	var result struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return strings.TrimSpace(result.Name), nil
}

func parsePrescription(text string) ([]domain.PrescribedMedication, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}
	var result struct {
		Medications []domain.PrescribedMedication `json:"medications"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Medications == nil {
		result.Medications = []domain.PrescribedMedication{}
	}
	return result.Medications, nil
}

// extractJSON attempts to extract a valid JSON object from the given string.
// It handles cases where the JSON is wrapped in code blocks (```json ... ```) or other text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func mimeTypeOf(image domain.Image) string {
	if image.MIMEType != "" {
		return image.MIMEType
	}
	return "image/jpeg"
}

type geminiVision struct {
	client *genai.Client
	model  string
}

func (g *geminiVision) Name() string { return "gemini" }

func (g *geminiVision) Generate(ctx context.Context, image domain.Image, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	// genai.ImageData takes the subtype only
	format := strings.TrimPrefix(mimeTypeOf(image), "image/")
	resp, err := model.GenerateContent(ctx, genai.ImageData(format, image.Data), genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

type openaiVision struct {
	client *openai.Client
	model  string
}

func (o *openaiVision) Name() string { return "openai" }

func (o *openaiVision) Generate(ctx context.Context, image domain.Image, prompt string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeTypeOf(image), base64.StdEncoding.EncodeToString(image.Data))

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: dataURL,
							},
						},
					},
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
