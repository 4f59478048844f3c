package reminder

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rvosen/mealbell/internal/model"
	"github.com/rvosen/mealbell/internal/push"
)

// maxBadgeHours caps the elapsed-hours badge at a displayable value.
const maxBadgeHours = 99

// Store is the subset of the subscription store the engine uses.
type Store interface {
	GetAll() ([]model.Subscription, error)
	SetLastDailyReminder(id int64, t time.Time) error
	DeleteByEndpoint(endpoint string) error
}

// Sink delivers one payload to one subscription. Implementations
// return push.ErrExpired when the endpoint is permanently gone; any
// other error is treated as transient.
type Sink interface {
	Send(sub *model.Subscription, payload push.Payload) error
}

// Config holds engine tuning.
type Config struct {
	// DefaultTargetHours is the interval threshold for subscriptions
	// without one of their own.
	DefaultTargetHours int
	// Icon and Badge are the notification image paths sent with
	// visible notifications.
	Icon  string
	Badge string
}

// Engine evaluates all subscriptions per pass and decides, per device,
// whether to send. Each pass re-derives its decisions from the store
// plus the send history; there is no stored per-subscription state
// machine.
type Engine struct {
	store   Store
	sink    Sink
	history SendHistory
	cfg     Config
	logger  *slog.Logger
}

func NewEngine(store Store, sink Sink, history SendHistory, cfg Config, logger *slog.Logger) *Engine {
	if cfg.DefaultTargetHours <= 0 {
		cfg.DefaultTargetHours = model.DefaultTargetHours
	}
	return &Engine{
		store:   store,
		sink:    sink,
		history: history,
		cfg:     cfg,
		logger:  logger,
	}
}

// SyncBadges sends a silent badge update with the clamped elapsed hour
// count to every subscription with a tracked meal. Badge state is not
// an interruption, so quiet hours do not apply.
func (e *Engine) SyncBadges(now time.Time) {
	e.sweep("badge_sync", now, e.syncBadge)
}

// SendIntervalReminders sends a visible reminder to every subscription
// whose elapsed time since the last meal has crossed its target, not
// suppressed by quiet hours and not throttled by the send history.
func (e *Engine) SendIntervalReminders(now time.Time) {
	e.sweep("interval_reminder", now, e.evaluateInterval)
}

// SendDailyReminders sends the generic once-per-calendar-day reminder.
// The caller is responsible for invoking it only during the configured
// daily hour; re-invocation within a day is deduplicated per
// subscription via last_daily_reminder.
func (e *Engine) SendDailyReminders(now time.Time) {
	e.sweep("daily_reminder", now, e.evaluateDaily)
}

// sweep iterates every subscription once. One subscription's failure
// never aborts the rest of the sweep.
func (e *Engine) sweep(pass string, now time.Time, eval func(*model.Subscription, time.Time) error) {
	subs, err := e.store.GetAll()
	if err != nil {
		e.logger.Error("list subscriptions", "pass", pass, "error", err)
		return
	}

	for i := range subs {
		if err := eval(&subs[i], now); err != nil {
			e.logger.Error("evaluate subscription", "pass", pass, "id", subs[i].ID, "error", err)
		}
	}
}

func (e *Engine) syncBadge(sub *model.Subscription, now time.Time) error {
	if sub.LastMealTime == nil {
		return nil
	}
	_, err := e.deliver(sub, push.BadgePayload(badgeCount(now, *sub.LastMealTime)))
	return err
}

// evaluateInterval applies the Pass B decision chain. The throttle
// window is one full target-hours duration after a recorded send, so a
// user with a 3-hour target hears again at roughly 6 and 9 hours
// elapsed rather than on every sweep.
func (e *Engine) evaluateInterval(sub *model.Subscription, now time.Time) error {
	if sub.LastMealTime == nil {
		return nil
	}
	if InQuietHours(sub.QuietHoursStart, sub.QuietHoursEnd, now.Hour()) {
		return nil
	}

	threshold := e.threshold(sub)
	elapsed := now.Sub(*sub.LastMealTime)
	if elapsed < threshold {
		return nil
	}
	if last, ok := e.history.Last(sub.ID); ok && now.Sub(last) < threshold {
		return nil
	}

	hoursAgo := int(elapsed.Hours())
	text := ResolveInterval(sub.Language, hoursAgo)
	delivered, err := e.deliver(sub, push.Payload{
		Title:      text.Title,
		Body:       text.Body,
		Icon:       e.cfg.Icon,
		Badge:      e.cfg.Badge,
		Tag:        "meal-reminder",
		BadgeCount: badgeCount(now, *sub.LastMealTime),
	})
	if err != nil {
		return err
	}
	if delivered {
		e.history.Record(sub.ID, now)
	}
	return nil
}

// evaluateDaily applies the Pass C decision chain. A quiet-hours skip
// does not write last_daily_reminder, but since the pass only runs in
// the configured hour the reminder is simply dropped for that day.
func (e *Engine) evaluateDaily(sub *model.Subscription, now time.Time) error {
	if InQuietHours(sub.QuietHoursStart, sub.QuietHoursEnd, now.Hour()) {
		return nil
	}
	if sub.LastDailyReminder != nil && sameDay(*sub.LastDailyReminder, now) {
		return nil
	}

	text := ResolveDaily(sub.Language)
	delivered, err := e.deliver(sub, push.Payload{
		Title: text.Title,
		Body:  text.Body,
		Icon:  e.cfg.Icon,
		Badge: e.cfg.Badge,
		Tag:   "daily-reminder",
	})
	if err != nil {
		return err
	}
	if delivered {
		if err := e.store.SetLastDailyReminder(sub.ID, now); err != nil {
			return fmt.Errorf("record daily reminder: %w", err)
		}
	}
	return nil
}

// deliver sends one payload and dispatches the outcome: an expired
// endpoint is deleted from the store, a transient failure is returned
// for the sweep to log, and the next scheduled pass retries naturally
// since no success was recorded.
func (e *Engine) deliver(sub *model.Subscription, payload push.Payload) (bool, error) {
	err := e.sink.Send(sub, payload)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, push.ErrExpired) {
		if derr := e.store.DeleteByEndpoint(sub.Endpoint); derr != nil {
			return false, fmt.Errorf("delete expired subscription: %w", derr)
		}
		e.logger.Info("removed expired subscription", "id", sub.ID)
		return false, nil
	}
	return false, err
}

func (e *Engine) threshold(sub *model.Subscription) time.Duration {
	hours := sub.TargetHours
	if hours <= 0 {
		hours = e.cfg.DefaultTargetHours
	}
	return time.Duration(hours) * time.Hour
}

// badgeCount is the whole hours elapsed since the last meal, clamped
// to what the badge can display.
func badgeCount(now, lastMeal time.Time) int {
	hours := int(now.Sub(lastMeal).Hours())
	if hours < 0 {
		hours = 0
	}
	if hours > maxBadgeHours {
		hours = maxBadgeHours
	}
	return hours
}

// sameDay compares calendar days in local time: the daily reminder
// resets at midnight, not 24 hours after the last send.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
