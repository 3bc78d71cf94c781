package telegram

import (
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cryptoTrends/internal/finance"
)

// Telegram rejects photo captions longer than this many characters.
const maxCaption = 1024

// Publisher sends rendered charts to one chat.
type Publisher struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

func NewPublisher(token string, chatID int64) (*Publisher, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newPublisher(api, chatID), nil
}

// NewPublisherWithClient talks to a custom Bot API endpoint, formatted as
// "https://host/bot%s/%s".
func NewPublisherWithClient(token, endpoint string, chatID int64, client tgbotapi.HTTPClient) (*Publisher, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, err
	}
	return newPublisher(api, chatID), nil
}

func newPublisher(api *tgbotapi.BotAPI, chatID int64) *Publisher {
	p := &Publisher{
		api:    api,
		chatID: chatID,
		logger: log.With().Str("component", "telegram").Logger(),
	}
	p.logger.Info().Str("bot", api.Self.UserName).Int64("chat_id", chatID).Msg("telegram: publisher ready")
	return p
}

// Publish sends f as a photo with its caption.
func (p *Publisher) Publish(f finance.Figure) error {
	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{Name: f.Name + ".png", Bytes: f.Image})
	photo.Caption = truncate(f.Caption, maxCaption)
	if _, err := p.api.Send(photo); err != nil {
		return fmt.Errorf("send %s: %w", f.Name, err)
	}
	p.logger.Info().Str("figure", f.Name).Msg("telegram: chart sent")
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
