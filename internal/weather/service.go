package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plausch-chat/plausch/internal/geo"
	"github.com/plausch-chat/plausch/internal/meteo"
)

// State classifies the outcome of one disambiguation round.
type State int

const (
	// StateResolved means a single location was found and Text holds the
	// formatted weather report.
	StateResolved State = iota
	// StateNeedsChoice means the address is ambiguous and Text holds a
	// 1-indexed candidate menu. The caller must resubmit the chosen
	// display name; no candidate state is kept server-side.
	StateNeedsChoice
	// StateNotFound means the geocoder returned no candidates.
	StateNotFound
	// StateError means a provider call failed; Text wraps the upstream
	// error.
	StateError
)

// Result is the outcome of resolving one address query.
type Result struct {
	State State
	Text  string
}

// notFoundText is the user-facing reply when the geocoder knows no matching
// place.
const notFoundText = "Der Ort konnte nicht gefunden werden. Bitte Überprüfen Sie ob Sie einen Existierenden und korrekt geschriebenen Ort eingegeben haben und probieren Sie es erneut!"

// Geocoder resolves free text into location candidates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geo.Candidate, error)
}

// ForecastProvider fetches the weather for a coordinate pair.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (*meteo.Forecast, error)
}

// Service runs the disambiguation state machine. It is stateless across
// calls; every query starts a fresh round.
type Service struct {
	geocoder Geocoder
	provider ForecastProvider
	logger   *slog.Logger
}

// NewService wires a disambiguation service from its providers.
func NewService(geocoder Geocoder, provider ForecastProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		geocoder: geocoder,
		provider: provider,
		logger:   logger,
	}
}

// Resolve runs one disambiguation round for address. Provider failures are
// surfaced, never retried.
func (s *Service) Resolve(ctx context.Context, address string) Result {
	candidates, err := s.geocoder.Search(ctx, address)
	if err != nil {
		s.logger.Warn("geocoding failed", "address", address, "error", err)
		return Result{State: StateError, Text: "Error: " + err.Error()}
	}

	if len(candidates) == 0 {
		return Result{State: StateNotFound, Text: notFoundText}
	}

	// The provider occasionally returns the same place twice; collapse the
	// duplicate instead of asking the user to pick between identical rows.
	if len(candidates) == 2 && candidates[0].DisplayName == candidates[1].DisplayName {
		candidates = candidates[:1]
	}

	if len(candidates) > 1 {
		s.logger.Debug("ambiguous address", "address", address, "candidates", len(candidates))
		return Result{State: StateNeedsChoice, Text: renderMenu(candidates)}
	}

	lat, lon, err := candidates[0].Coordinates()
	if err != nil {
		s.logger.Warn("bad candidate coordinates", "address", address, "error", err)
		return Result{State: StateError, Text: "Error: " + err.Error()}
	}

	forecast, err := s.provider.Forecast(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("forecast failed", "address", address, "error", err)
		return Result{State: StateError, Text: "Error: " + err.Error()}
	}

	return Result{State: StateResolved, Text: FormatReport(forecast)}
}

// renderMenu builds the 1-indexed candidate list, one "[i]display name" line
// per candidate, with no trailing newline. The menu is stable only within
// this round.
func renderMenu(candidates []geo.Candidate) string {
	var b strings.Builder
	for i, c := range candidates {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d]%s", i+1, c.DisplayName)
	}
	return b.String()
}
