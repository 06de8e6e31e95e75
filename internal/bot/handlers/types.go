package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/bot/menus"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/interfaces"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

// Sender is the part of *tgbotapi.BotAPI the handlers use.
type Sender interface {
	menus.Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// PhotoFetcher downloads a Telegram photo by file id.
type PhotoFetcher func(ctx context.Context, fileID string) (domain.Image, error)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Medications interfaces.MedicationServiceInterface
	Doses       interfaces.DoseServiceInterface
	Checks      interfaces.CheckServiceInterface
	Narrator    interfaces.NarratorInterface // nil disables voice replies
	FetchPhoto  PhotoFetcher
	Now         services.Clock
}
