package generator

import (
	"encoding/base64"
	"fmt"
	"html"
)

// fallbackPalette is the fixed set of background colors for placeholder
// images. The color choice must stay deterministic per prompt, so order
// matters.
var fallbackPalette = []string{"red", "blue", "green", "purple", "orange", "teal"}

const captionLimit = 30

// fallbackColor derives a palette color from the prompt: sum of character
// codes modulo the palette size.
func fallbackColor(prompt string) string {
	sum := 0
	for _, r := range prompt {
		sum += int(r)
	}
	return fallbackPalette[sum%len(fallbackPalette)]
}

// fallbackCaption truncates the prompt to the caption limit, ellipsized.
func fallbackCaption(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= captionLimit {
		return prompt
	}
	return string(runes[:captionLimit]) + "..."
}

// FallbackImage synthesizes a placeholder SVG for the prompt and returns it
// as a base64 data URL. Used whenever the provider is unusable or fails;
// this path cannot itself fail.
func FallbackImage(prompt string) string {
	svg := fmt.Sprintf(`
  <svg width="512" height="512" xmlns="http://www.w3.org/2000/svg">
    <rect width="512" height="512" fill="%s" />
    <text x="50%%" y="50%%" font-family="Arial" font-size="20" fill="white" text-anchor="middle">
      %s
    </text>
  </svg>
  `, fallbackColor(prompt), html.EscapeString(fallbackCaption(prompt)))

	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}
