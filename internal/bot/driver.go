package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fetchbot/internal/domain"
	"fetchbot/internal/ports"
	"fetchbot/internal/sweep"
	"fetchbot/internal/usecase"
	"fetchbot/pkg/backoff"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const helpText = `Send me a video link and I will fetch it for you.

Supported: YouTube, TikTok, Instagram, Twitter/X, Facebook, Reddit, Vimeo, Pinterest, Dailymotion, SoundCloud.

Commands:
/stats - your download stats and remaining hourly budget
/queue - current queue depth
/help  - this message`

// Deps wires the driver to every collaborator it ticks.
type Deps struct {
	Store     ports.Store
	Events    ports.EventSource
	Messenger ports.Messenger
	Submitter usecase.Submitter
	Processor usecase.Processor
	Finalizer *usecase.Finalizer
	Limiter   usecase.Limiter
	Sweeper   sweep.Sweeper

	PollInterval  time.Duration
	SweepInterval time.Duration
	FinalizeBatch int

	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Driver is the single-threaded polling loop: process one task, finalize,
// sweep, fetch inbound events, dispatch, sleep. It never exits on a caught
// error, only on context cancellation.
type Driver struct {
	Deps
}

// loopState is everything that survives between iterations. Held explicitly
// here instead of package-level variables.
type loopState struct {
	cursor    int
	lastSweep time.Time
	failures  int
}

func New(deps Deps) *Driver {
	if deps.FinalizeBatch <= 0 {
		deps.FinalizeBatch = 5
	}
	if deps.SweepInterval <= 0 {
		deps.SweepInterval = time.Hour
	}
	if deps.BaseBackoff <= 0 {
		deps.BaseBackoff = 500 * time.Millisecond
	}
	if deps.MaxBackoff <= 0 {
		deps.MaxBackoff = 30 * time.Second
	}
	return &Driver{Deps: deps}
}

func (d *Driver) Run(ctx context.Context) error {
	st := &loopState{}

	// Sweep once at startup, then on the interval.
	if _, err := d.Sweeper.Sweep(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("startup sweep failed")
	}
	st.lastSweep = time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := d.iterate(ctx, st); err != nil {
			st.failures++
			delay := backoff.ExponentialJitter(d.BaseBackoff, d.MaxBackoff, st.failures)
			log.Ctx(ctx).Error().Err(err).Int("failures", st.failures).
				Dur("backoff", delay).Msg("iteration failed, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		st.failures = 0

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *Driver) iterate(ctx context.Context, st *loopState) error {
	if _, err := d.Processor.ProcessOne(ctx); err != nil {
		return err
	}
	if err := d.Finalizer.FinalizeCompleted(ctx, d.FinalizeBatch); err != nil {
		return err
	}
	if err := d.Finalizer.FinalizeFailed(ctx, d.FinalizeBatch); err != nil {
		return err
	}
	if time.Since(st.lastSweep) >= d.SweepInterval {
		if _, err := d.Sweeper.Sweep(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("sweep failed")
		}
		st.lastSweep = time.Now()
	}

	events, next, err := d.Events.FetchEvents(ctx, st.cursor)
	if err != nil {
		return err
	}
	st.cursor = next
	for _, ev := range events {
		d.handleEvent(ctx, ev)
	}
	return nil
}

func (d *Driver) handleEvent(ctx context.Context, ev ports.Event) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	logger := log.Ctx(ctx).With().
		Str("trace", uuid.NewString()).
		Int64("user", ev.UserID).
		Logger()

	if strings.HasPrefix(text, "/") {
		d.handleCommand(logger.WithContext(ctx), ev, text)
		return
	}

	id, err := d.Submitter.Submit(ctx, ev.UserID, text)
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		logger.Info().Msg("submission rate limited")
		d.reply(ctx, ev.ChatID, "You have reached your hourly download limit. Try again next hour.")
	case errors.Is(err, domain.ErrInvalidURL):
		logger.Info().Str("text", text).Msg("unsupported url rejected")
		d.reply(ctx, ev.ChatID, "That link is malformed or from an unsupported site. Send /help for the list.")
	case err != nil:
		logger.Error().Err(err).Msg("submission failed")
		d.reply(ctx, ev.ChatID, "Something went wrong, please try again later.")
	default:
		logger.Info().Uint64("task", id).Msg("task queued")
		d.reply(ctx, ev.ChatID, fmt.Sprintf("Queued as #%d. I will send the file when it is ready.", id))
	}
}

func (d *Driver) handleCommand(ctx context.Context, ev ports.Event, text string) {
	cmd := strings.Fields(text)[0]
	// strip the @botname suffix used in group chats
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/start", "/help":
		d.reply(ctx, ev.ChatID, helpText)
	case "/stats":
		d.replyStats(ctx, ev)
	case "/queue":
		d.replyQueue(ctx, ev)
	default:
		d.reply(ctx, ev.ChatID, "Unknown command. Send /help for usage.")
	}
}

func (d *Driver) replyStats(ctx context.Context, ev ports.Event) {
	st, err := d.Store.GetUserStat(ctx, ev.UserID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("stats lookup failed")
		d.reply(ctx, ev.ChatID, "Something went wrong, please try again later.")
		return
	}
	left, err := d.Limiter.Remaining(ctx, ev.UserID, time.Now().UTC())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("stats lookup failed")
		d.reply(ctx, ev.ChatID, "Something went wrong, please try again later.")
		return
	}
	total := 0
	if st != nil {
		total = st.DownloadsCount
	}
	d.reply(ctx, ev.ChatID, fmt.Sprintf("Completed downloads: %d\nRequests left this hour: %d", total, left))
}

func (d *Driver) replyQueue(ctx context.Context, ev ports.Event) {
	pending, err := d.Store.CountByStatus(ctx, domain.StatusPending, domain.StatusDownloading)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("queue lookup failed")
		d.reply(ctx, ev.ChatID, "Something went wrong, please try again later.")
		return
	}
	d.reply(ctx, ev.ChatID, fmt.Sprintf("Tasks in queue: %d", pending))
}

func (d *Driver) reply(ctx context.Context, chatID int64, text string) {
	if err := d.Messenger.SendText(ctx, chatID, text); err != nil {
		log.Ctx(ctx).Warn().Int64("chat", chatID).Err(err).Msg("reply delivery failed")
	}
}
