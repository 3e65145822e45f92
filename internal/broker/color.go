package broker

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// defaultPalette holds the named colors handed out first, front to back.
var defaultPalette = []string{"Red", "Green", "Blue", "Yellow", "Cyan", "Magenta"}

// maxRandomAttempts bounds rejection sampling before falling back to a
// deterministic hash-derived color.
const maxRandomAttempts = 256

// ColorAssigner maps usernames to display colors. Assignment is idempotent
// per username, and no two usernames ever hold the same color. Once the
// palette is exhausted, colors are generated as #RRGGBB values.
type ColorAssigner struct {
	mu      sync.Mutex
	palette []string
	inUse   map[string]struct{}
	byUser  map[string]string
	rng     *rand.Rand
}

// NewColorAssigner creates an assigner with the default palette.
func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{
		palette: append([]string(nil), defaultPalette...),
		inUse:   make(map[string]struct{}),
		byUser:  make(map[string]string),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Assign returns the color for username, allocating one on first use.
func (a *ColorAssigner) Assign(username string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if color, ok := a.byUser[username]; ok {
		return color
	}

	var color string
	if len(a.palette) > 0 {
		color = a.palette[0]
		a.palette = a.palette[1:]
	} else {
		color = a.generate(username)
	}

	a.byUser[username] = color
	a.inUse[color] = struct{}{}
	return color
}

// Color reports the color already assigned to username, if any.
func (a *ColorAssigner) Color(username string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	color, ok := a.byUser[username]
	return color, ok
}

// generate produces a hex color not currently in use. Random sampling is
// capped; after that a color derived from the username hash is perturbed
// until free, so the loop always terminates.
func (a *ColorAssigner) generate(username string) string {
	for attempt := 0; attempt < maxRandomAttempts; attempt++ {
		color := fmt.Sprintf("#%02X%02X%02X", a.rng.Intn(256), a.rng.Intn(256), a.rng.Intn(256))
		if _, taken := a.inUse[color]; !taken {
			return color
		}
	}

	h := fnv.New32a()
	h.Write([]byte(username))
	v := h.Sum32()
	for {
		color := fmt.Sprintf("#%06X", v&0xFFFFFF)
		if _, taken := a.inUse[color]; !taken {
			return color
		}
		v++
	}
}
