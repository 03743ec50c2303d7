package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// TelegramSink posts notifications into the operators' Telegram chat.
type TelegramSink struct {
	BotAPI      *tgbotapi.BotAPI
	AdminChatID int64
}

func NewTelegramSink(token string, adminChatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	bot.Debug = false
	log.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier authorized")

	return &TelegramSink{BotAPI: bot, AdminChatID: adminChatID}, nil
}

func (s *TelegramSink) Deliver(ctx context.Context, n Notification) error {
	// Thank-you notes are email territory; the bot only serves the admin
	// chat, so everything else collapses into an alert there.
	text := fmt.Sprintf("*%s*\n%s", n.Subject, n.Body)
	msg := tgbotapi.NewMessage(s.AdminChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := s.BotAPI.Send(msg); err != nil {
		return fmt.Errorf("sending telegram alert: %w", err)
	}
	return nil
}
