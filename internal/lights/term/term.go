package term

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/scheerer/stoplight/internal/lights"
)

const (
	activeGlyph   = "●"
	inactiveGlyph = "○"
)

// TermLights renders the lamp row as a single status line, rewritten in
// place on every transition. The active lamp is drawn filled and bold in its
// color, inactive lamps hollow and faint.
type TermLights struct {
	mu        sync.Mutex
	out       io.Writer
	lampCount int
	rendered  bool
}

var _ lights.LightService = (*TermLights)(nil)

// New builds a terminal renderer writing to out. A nil out means stdout.
func New(out io.Writer) *TermLights {
	if out == nil {
		out = os.Stdout
	}
	return &TermLights{out: out}
}

func (t *TermLights) Start(ctx context.Context) {}

// Stop terminates the status line so the shell prompt lands on a fresh row.
func (t *TermLights) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rendered {
		fmt.Fprintln(t.out)
	}
}

func (t *TermLights) LightCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lampCount
}

func (t *TermLights) SetActiveLight(ctx context.Context, lamps []lights.Color, active int, transition time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lampCount = len(lamps)

	var b strings.Builder
	for i, lamp := range lamps {
		if i > 0 {
			b.WriteByte(' ')
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(lamp)))
		if i == active {
			b.WriteString(style.Bold(true).Render(activeGlyph))
		} else {
			b.WriteString(style.Faint(true).Render(inactiveGlyph))
		}
	}

	fmt.Fprintf(t.out, "\r%s", b.String())
	t.rendered = true
}

func hexColor(c lights.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}
