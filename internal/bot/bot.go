package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/medication-helper/internal/bot/state"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
)

const maxPhotoBytes = 20 << 20

type Bot struct {
	api           *tgbotapi.BotAPI
	updateHandler *handlers.UpdateHandler
	httpClient    *http.Client
}

// NewBot connects to Telegram. deps.FetchPhoto is filled in by the bot.
func NewBot(token string, deps handlers.Dependencies, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Bot authorized", "account", api.Self.UserName)

	b := &Bot{
		api:        api,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if deps.FetchPhoto == nil {
		deps.FetchPhoto = b.fetchPhoto
	}
	b.updateHandler = handlers.NewUpdateHandler(api, deps, stateManager)
	return b, nil
}

// fetchPhoto downloads a photo through the Bot API file link.
func (b *Bot) fetchPhoto(ctx context.Context, fileID string) (domain.Image, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Image{}, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to read image data: %w", err)
	}
	// Telegram re-encodes photos as JPEG.
	return domain.Image{Data: data, MIMEType: "image/jpeg"}, nil
}

// Start polls for updates until ctx is done, then waits for pending voice replies.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down")
			b.api.StopReceivingUpdates()
			b.updateHandler.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.updateHandler.Wait()
				return nil
			}
			if update.Message != nil && update.Message.From != nil {
				logger.Debug("Received message", "user_id", update.Message.From.ID, "text", update.Message.Text)
			}
			if err := b.updateHandler.Handle(ctx, update); err != nil {
				logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
