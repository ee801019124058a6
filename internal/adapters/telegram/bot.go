package telegram

import (
	"bus-schedule-bot/internal/dispatch"
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ingest"
	"bus-schedule-bot/internal/platform/obs"
	"bus-schedule-bot/internal/services"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"
)

// Handler is the chat-agnostic side of the bot.
type Handler interface {
	HandleCommand(ctx context.Context, u dispatch.User, name string, args []string) services.Response
	HandleDocument(ctx context.Context, u dispatch.User, doc ingest.Document) services.Response
	HandleAction(ctx context.Context, u dispatch.User, payload string) services.Response
}

// The subset of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot long-polls Telegram and hands each update to Handler on a bounded
// number of goroutines.
type Bot struct {
	api            botAPI
	handler        Handler
	session        *http.Client
	workers        *semaphore.Weighted
	maxUploadBytes int64
	pollTimeout    int
}

func NewBot(token string, h Handler, workers int, maxUploadBytes int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "telegram", Err: err}
	}
	log.Printf("telegram: authorized as @%s", api.Self.UserName)

	return newBot(api, h, workers, maxUploadBytes), nil
}

func newBot(api botAPI, h Handler, workers int, maxUploadBytes int64) *Bot {
	if workers <= 0 {
		workers = 1
	}
	return &Bot{
		api:            api,
		handler:        h,
		session:        &http.Client{Timeout: 30 * time.Second},
		workers:        semaphore.NewWeighted(int64(workers)),
		maxUploadBytes: maxUploadBytes,
		pollTimeout:    30,
	}
}

// Run polls until ctx is cancelled, then waits for in-flight updates.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.workers.Acquire(ctx, 1); err != nil {
				return nil
			}

			wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer wg.Done()
				defer b.workers.Release(1)
				b.handleUpdate(ctx, upd)
			}(upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	ctx = obs.WithRequestID(ctx, fmt.Sprintf("upd-%d", upd.UpdateID))

	defer func() {
		if r := recover(); r != nil {
			log.Printf("req_id=%s panic handling update: %v", obs.RequestID(ctx), r)
		}
	}()

	var err error
	defer obs.Time(ctx, "telegram.update")(&err)

	switch {
	case upd.CallbackQuery != nil:
		err = b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		err = b.handleMessage(ctx, upd.Message)
	}
}

func userOf(u *tgbotapi.User) dispatch.User {
	if u == nil {
		return dispatch.User{}
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return dispatch.User{ID: u.ID, Name: name}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) error {
	u := userOf(m.From)

	var res services.Response
	switch {
	case m.IsCommand():
		res = b.handler.HandleCommand(ctx, u, m.Command(), strings.Fields(m.CommandArguments()))
	case m.Document != nil:
		doc, err := b.download(ctx, m.Document.FileID, m.Document.FileName, m.Document.MimeType)
		if err != nil {
			res = services.Response{Text: "Could not download the file. Please try again."}
			log.Printf("req_id=%s download failed: %v", obs.RequestID(ctx), err)
			break
		}
		res = b.handler.HandleDocument(ctx, u, doc)
	case len(m.Photo) > 0:
		// Telegram lists photo sizes smallest first.
		p := m.Photo[len(m.Photo)-1]
		doc, err := b.download(ctx, p.FileID, "photo.jpg", "image/jpeg")
		if err != nil {
			res = services.Response{Text: "Could not download the photo. Please try again."}
			log.Printf("req_id=%s download failed: %v", obs.RequestID(ctx), err)
			break
		}
		res = b.handler.HandleDocument(ctx, u, doc)
	case looksLikeSchedule(m.Text):
		res = b.handler.HandleDocument(ctx, u, ingest.Document{
			Name: "message.txt", MIMEType: "text/plain", Data: []byte(m.Text),
		})
	default:
		res = b.handler.HandleCommand(ctx, u, "help", nil)
	}

	return b.reply(m.Chat.ID, res)
}

func looksLikeSchedule(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "date:") && strings.Contains(lower, "umlauf:")
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Printf("req_id=%s answer callback failed: %v", obs.RequestID(ctx), err)
	}
	if q.Message == nil || q.Message.Chat == nil {
		return errors.New("callback without message")
	}

	res := b.handler.HandleAction(ctx, userOf(q.From), q.Data)
	return b.reply(q.Message.Chat.ID, res)
}

func (b *Bot) reply(chatID int64, res services.Response) error {
	chunks := splitMessage(res.Text, maxMessageLen)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == len(chunks)-1 && len(res.Actions) > 0 {
			msg.ReplyMarkup = keyboard(res.Actions)
		}
		if _, err := b.api.Send(msg); err != nil {
			return &domain.ExternalServiceError{Service: "telegram", Err: fmt.Errorf("send to chat %d: %w", chatID, err)}
		}
	}
	return nil
}

func keyboard(buttons []services.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action.Encode()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

const maxMessageLen = 4096

// splitMessage cuts text into chunks of at most limit bytes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if text == "" {
		return []string{" "}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !isRuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	return append(chunks, text)
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
