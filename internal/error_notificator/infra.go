package error_notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	bot         Sender
	adminChatID int64
}

func NewInfra(bot Sender, adminChatID int64) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID}
}

// NewTelegramInfra logs in with token and sends alerts to adminChatID.
func NewTelegramInfra(token string, adminChatID int64) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return NewInfra(bot, adminChatID), nil
}

func (i *Infra) Notify(ctx context.Context, source string, err error, details string) error {
	if i.bot == nil {
		log.Printf("[error_notificator] bot not configured, source=%s err=%v", source, err)
		return fmt.Errorf("bot not configured")
	}

	text := fmt.Sprintf(
		"❗ Ошибка в %s\n\nОшибка: %v\n\nДетали: %s",
		source,
		err,
		details,
	)

	msg := tgbotapi.NewMessage(i.adminChatID, text)

	_, sendErr := i.bot.Send(msg)
	if sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}

	return nil
}

// Nop drops every alert. Used when no bot token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string, error, string) error { return nil }
