package lights

import (
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

// Fallback is rendered for color tokens the parser does not understand.
var Fallback = Color{Red: 128, Green: 128, Blue: 128}

var namedColors = map[string]Color{
	"red":     {255, 0, 0},
	"yellow":  {255, 255, 0},
	"green":   {0, 128, 0},
	"lime":    {0, 255, 0},
	"orange":  {255, 165, 0},
	"blue":    {0, 0, 255},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"purple":  {128, 0, 128},
	"white":   {255, 255, 255},
	"black":   {0, 0, 0},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
}

// ParseColor parses a CSS-style color token: #rgb / #rrggbb hex, rgb(...) or
// rgba(...) with 0-255 channels, or a named color. The second return reports
// whether the token was understood; unknown tokens yield Fallback.
func ParseColor(token string) (Color, bool) {
	t := strings.ToLower(strings.TrimSpace(token))

	if c, ok := namedColors[t]; ok {
		return c, true
	}

	if strings.HasPrefix(t, "#") {
		c, err := colorful.Hex(t)
		if err != nil {
			return Fallback, false
		}
		r, g, b := c.RGB255()
		return Color{Red: r, Green: g, Blue: b}, true
	}

	if strings.HasPrefix(t, "rgb(") || strings.HasPrefix(t, "rgba(") {
		return parseRGBFunc(t)
	}

	return Fallback, false
}

func parseRGBFunc(t string) (Color, bool) {
	open := strings.Index(t, "(")
	if open < 0 || !strings.HasSuffix(t, ")") {
		return Fallback, false
	}
	parts := strings.Split(t[open+1:len(t)-1], ",")
	if len(parts) < 3 {
		return Fallback, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return Fallback, false
		}
		ch[i] = uint8(math.Round(v))
	}
	return Color{Red: ch[0], Green: ch[1], Blue: ch[2]}, true
}

// ParseAll maps color tokens to renderable colors, warning once per token it
// cannot understand.
func ParseAll(tokens []string) []Color {
	lamps := make([]Color, len(tokens))
	for i, token := range tokens {
		c, ok := ParseColor(token)
		if !ok {
			logger.With(zap.String("color", token)).Warn("Unrecognized color token; rendering gray")
		}
		lamps[i] = c
	}
	return lamps
}
