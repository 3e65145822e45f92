package broker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plausch-chat/plausch/internal/weather"
)

// Status categorizes a dispatch outcome. The transport layer maps it onto
// its own status codes.
type Status int

const (
	// StatusCreated means a chat message was accepted for delivery.
	StatusCreated Status = iota
	// StatusOK carries a synchronous textual reply, e.g. a weather report.
	StatusOK
	// StatusBadRequest rejects a malformed or ambiguous request; Text says
	// why, or carries the candidate menu.
	StatusBadRequest
	// StatusNotFound means a weather lookup matched no place.
	StatusNotFound
	// StatusProviderError means an upstream provider failed.
	StatusProviderError
)

// Outcome is the router's reply to one dispatch call.
type Outcome struct {
	Status Status
	Text   string
}

const (
	weatherCommand = "/wetter"
	systemSender   = "System"

	// DefaultColor is stamped on messages from senders without a session.
	DefaultColor = "White"
)

const (
	createdText      = "Message received and processed."
	missingAddress   = "Es wurde keine Adresse angegeben. Bitte verwenden Sie den Befehl folgendermaßen: /wetter <adress>"
	unknownCommand   = "Unbekannter Befehl."
	menuInstructions = "Welches %s meinen Sie? Schreiben Sie bitte eine Ziffer aus der Liste.\n%s"
	resolvedIntro    = "Sehr gerne gebe ich Ihnen das Wetter für %q aus\n%s"
)

// WeatherResolver runs one address disambiguation round.
type WeatherResolver interface {
	Resolve(ctx context.Context, address string) weather.Result
}

// MessageRecorder counts delivered messages per sender.
type MessageRecorder interface {
	RecordMessage(ctx context.Context, username string) error
}

// Router accepts inbound messages, decides broadcast vs. private delivery,
// stamps metadata, and fulfills pending slots. Weather commands are answered
// synchronously and never touch a slot.
type Router struct {
	registry *Registry
	weather  WeatherResolver
	stats    MessageRecorder
	logger   *slog.Logger

	now func() time.Time
}

// NewRouter creates a router over registry. weather handles /wetter commands;
// stats may be nil to disable message counting.
func NewRouter(registry *Registry, weatherSvc WeatherResolver, stats MessageRecorder, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: registry,
		weather:  weatherSvc,
		stats:    stats,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch routes one inbound message. Chat messages are delivered best
// effort to the recipients' pending slots; command messages produce a
// synchronous textual outcome for the sender alone.
func (rt *Router) Dispatch(ctx context.Context, msg Message) Outcome {
	if strings.HasPrefix(msg.Content, "/") {
		return rt.dispatchCommand(ctx, msg)
	}
	return rt.deliver(msg)
}

func (rt *Router) dispatchCommand(ctx context.Context, msg Message) Outcome {
	if !strings.HasPrefix(msg.Content, weatherCommand) {
		return Outcome{Status: StatusBadRequest, Text: unknownCommand}
	}

	address := strings.TrimSpace(strings.TrimPrefix(msg.Content, weatherCommand))
	if address == "" {
		return Outcome{Status: StatusBadRequest, Text: missingAddress}
	}

	result := rt.weather.Resolve(ctx, address)
	switch result.State {
	case weather.StateResolved:
		return Outcome{Status: StatusOK, Text: fmt.Sprintf(resolvedIntro, address, result.Text)}
	case weather.StateNeedsChoice:
		return Outcome{Status: StatusBadRequest, Text: fmt.Sprintf(menuInstructions, address, result.Text)}
	case weather.StateNotFound:
		return Outcome{Status: StatusNotFound, Text: result.Text}
	default:
		return Outcome{Status: StatusProviderError, Text: result.Text}
	}
}

// deliver stamps the message and fulfills the recipients' slots. Sessions
// without a live slot at this instant simply miss the message; there is no
// queueing or replay.
func (rt *Router) deliver(msg Message) Outcome {
	color, ok := rt.registry.Color(msg.Sender)
	if !ok {
		color = DefaultColor
	}
	msg.Color = color
	msg.Timestamp = rt.now()

	if msg.Recipient != "" {
		rt.deliverPrivate(msg)
	} else {
		rt.broadcast(msg)
	}

	rt.recordMessage(msg.Sender)
	return Outcome{Status: StatusCreated, Text: createdText}
}

func (rt *Router) deliverPrivate(msg Message) {
	if rt.registry.Fulfill(msg.Recipient, msg) {
		return
	}

	notice := Message{
		Sender:    systemSender,
		Content:   fmt.Sprintf("Recipient '%s' not found.", msg.Recipient),
		Color:     "Red",
		Timestamp: rt.now(),
	}
	if !rt.registry.Fulfill(msg.Sender, notice) {
		// Neither side is reachable: drop the notice and give up on the
		// sender's session.
		rt.logger.Warn("dropping undeliverable notice, removing sender",
			"sender", msg.Sender,
			"recipient", msg.Recipient,
		)
		rt.registry.Remove(msg.Sender)
	}
}

func (rt *Router) broadcast(msg Message) {
	delivered := 0
	others := rt.registry.ListOthers(msg.Sender)
	for _, username := range others {
		if rt.registry.Fulfill(username, msg) {
			delivered++
		}
	}
	rt.logger.Debug("broadcast message",
		"sender", msg.Sender,
		"targets", len(others),
		"delivered", delivered,
	)
}

// recordMessage updates usage statistics off the dispatch path. Failures are
// logged and never affect delivery.
func (rt *Router) recordMessage(username string) {
	if rt.stats == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.stats.RecordMessage(ctx, username); err != nil {
			rt.logger.Warn("failed to record message statistic", "username", username, "error", err)
		}
	}()
}
