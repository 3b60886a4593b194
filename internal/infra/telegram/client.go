package telegram

import (
	"context"

	"fetchbot/internal/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

var (
	_ ports.Messenger   = (*Client)(nil)
	_ ports.EventSource = (*Client)(nil)
)

// Client adapts the Telegram Bot API to the Messenger and EventSource ports.
type Client struct {
	bot         *tgbotapi.BotAPI
	longPollSec int
}

func New(token string, longPollSec int) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("authorized on telegram as @%s", bot.Self.UserName)
	return &Client{bot: bot, longPollSec: longPollSec}, nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (c *Client) SendFile(ctx context.Context, chatID int64, path string, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	_, err := c.bot.Send(video)
	return err
}

// FetchEvents long-polls for updates past cursor, bounded by the configured
// request timeout, and returns the next cursor to resume from.
func (c *Client) FetchEvents(ctx context.Context, cursor int) ([]ports.Event, int, error) {
	req := tgbotapi.NewUpdate(cursor)
	req.Timeout = c.longPollSec
	updates, err := c.bot.GetUpdates(req)
	if err != nil {
		return nil, cursor, err
	}
	next := cursor
	events := make([]ports.Event, 0, len(updates))
	for _, upd := range updates {
		if upd.UpdateID >= next {
			next = upd.UpdateID + 1
		}
		if upd.Message == nil || upd.Message.From == nil {
			continue
		}
		events = append(events, ports.Event{
			UserID: upd.Message.From.ID,
			ChatID: upd.Message.Chat.ID,
			Text:   upd.Message.Text,
		})
	}
	return events, next, nil
}
