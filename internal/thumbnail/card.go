// Package thumbnail renders the SVG preview cards used as post thumbnails.
//
// A card is described entirely by its path, for example
//
//	image-emoji:rocket-title:Hello-body:World-backgroundColor:ff0000,0000ff.svg
//
// Arguments are dash separated key:value pairs after the "image" prefix.
// Unknown keys are ignored.
package thumbnail

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidPath = errors.New("invalid thumbnail path")

const (
	defaultFontSize  = 48
	defaultWidth     = 1200
	defaultHeight    = 630
	defaultEmojiSize = 120
	maxFontSize      = 400
)

var emojis = map[string]string{
	"cry":         "\U0001F622",
	"laugh":       "\U0001F602",
	"smile":       "\U0001F60A",
	"heart":       "\u2764\uFE0F",
	"fire":        "\U0001F525",
	"star":        "\u2B50",
	"rocket":      "\U0001F680",
	"check":       "\u2705",
	"cross":       "\u274C",
	"warning":     "\u26A0\uFE0F",
	"info":        "\u2139\uFE0F",
	"question":    "\u2753",
	"exclamation": "\u2757",
	"wrench":      "\U0001F527",
	"debug":       "\U0001F41B",
	"developer":   "\U0001F468\u200D\U0001F4BB",
	"building":    "\U0001F3D7\uFE0F",
}

var (
	hexColor  = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)
	safeColor = regexp.MustCompile(`^#?[a-zA-Z0-9(),.% ]{1,40}$`)
)

type Background struct {
	From string
	To   string
}

func (b Background) Gradient() bool { return b.To != "" }

var defaultBackground = Background{From: "#667eea", To: "#764ba2"}

type Card struct {
	Emoji      string
	Title      string
	Body       string
	FontSize   int
	Width      int
	Height     int
	EmojiSize  int
	Background Background
}

func defaultCard() Card {
	return Card{
		FontSize:   defaultFontSize,
		Width:      defaultWidth,
		Height:     defaultHeight,
		EmojiSize:  defaultEmojiSize,
		Background: defaultBackground,
	}
}

// Parse reads a card description from a request path.
func Parse(path string) (Card, error) {
	path = strings.TrimSuffix(strings.TrimPrefix(path, "/"), ".svg")
	parts := strings.Split(path, "-")
	if len(parts) < 2 || parts[0] != "image" {
		return Card{}, ErrInvalidPath
	}

	card := defaultCard()
	for _, arg := range parts[1:] {
		key, value, ok := strings.Cut(arg, ":")
		if !ok {
			continue
		}
		switch key {
		case "emoji":
			card.Emoji = lookupEmoji(value)
		case "title":
			card.Title = value
		case "body":
			card.Body = value
		case "fontSize":
			if size, err := strconv.Atoi(value); err == nil && size > 0 && size <= maxFontSize {
				card.FontSize = size
			}
		case "backgroundColor":
			card.Background = parseBackground(value, card.Background)
		}
	}
	return card, nil
}

func lookupEmoji(key string) string {
	if e, ok := emojis[key]; ok {
		return e
	}
	return key
}

func parseBackground(value string, fallback Background) Background {
	if strings.Contains(value, ",") {
		colors := strings.Split(value, ",")
		from, okFrom := parseColor(colors[0])
		to, okTo := parseColor(colors[1])
		if !okFrom || !okTo {
			return fallback
		}
		return Background{From: from, To: to}
	}
	c, ok := parseColor(value)
	if !ok {
		return fallback
	}
	return Background{From: c}
}

func parseColor(color string) (string, bool) {
	color = strings.TrimSpace(color)
	if hexColor.MatchString(color) {
		return "#" + color, true
	}
	return color, safeColor.MatchString(color)
}

// verticalOffsets centres the stacked lines around the card's middle.
func verticalOffsets(spacing []float64) []float64 {
	n := len(spacing)
	if n == 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	for i := range spacing {
		offset := float64(i) - float64(n-1)/2
		out[i] = offset * spacing[i]
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render produces the SVG document. All text is XML-escaped.
func (c Card) Render() string {
	type line struct {
		element func(y float64) string
		spacing float64
	}

	var lines []line
	if c.Emoji != "" {
		lines = append(lines, line{
			spacing: float64(c.EmojiSize),
			element: func(y float64) string {
				return fmt.Sprintf(`<text x="0" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="%d" font-family="Arial, sans-serif">%s</text>`,
					num(y), c.EmojiSize, html.EscapeString(c.Emoji))
			},
		})
	}
	if c.Title != "" {
		lines = append(lines, line{
			spacing: float64(c.FontSize),
			element: func(y float64) string {
				return fmt.Sprintf(`<text x="0" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="%d" font-family="Arial, sans-serif" font-weight="bold" fill="white">%s</text>`,
					num(y), c.FontSize, html.EscapeString(c.Title))
			},
		})
	}
	if c.Body != "" {
		lines = append(lines, line{
			spacing: float64(c.FontSize) * 0.75,
			element: func(y float64) string {
				return fmt.Sprintf(`<text x="0" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="%d" font-family="Arial, sans-serif" fill="rgba(255,255,255,0.8)">%s</text>`,
					num(y), int(float64(c.FontSize)*0.8), html.EscapeString(c.Body))
			},
		})
	}

	spacing := make([]float64, len(lines))
	for i, l := range lines {
		spacing[i] = l.spacing
	}
	offsets := verticalOffsets(spacing)

	var defs, fill string
	if c.Background.Gradient() {
		defs = fmt.Sprintf(`<linearGradient id="bg" x1="0%%" y1="0%%" x2="100%%" y2="100%%">
        <stop offset="0%%" style="stop-color:%s;stop-opacity:1" />
        <stop offset="100%%" style="stop-color:%s;stop-opacity:1" />
      </linearGradient>`, html.EscapeString(c.Background.From), html.EscapeString(c.Background.To))
		fill = "url(#bg)"
	} else {
		fill = html.EscapeString(c.Background.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", c.Width, c.Height)
	fmt.Fprintf(&b, "  <defs>\n    %s\n  </defs>\n", defs)
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="%s" />`+"\n", c.Width, c.Height, fill)
	fmt.Fprintf(&b, `  <g transform="translate(%d, %d)">`+"\n", c.Width/2, c.Height/2)
	for i, l := range lines {
		b.WriteString("    ")
		b.WriteString(l.element(offsets[i]))
		b.WriteString("\n")
	}
	b.WriteString("  </g>\n</svg>")
	return b.String()
}
