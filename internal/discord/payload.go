package discord

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/acarl005/stripansi"
)

const (
	// EmbedColor is the green used for every embed.
	EmbedColor = 5763719

	DefaultTitle       = "Stanton Times Update"
	DefaultDescription = "No description provided"
)

type Embed struct {
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Payload is the body of a webhook execute request.
type Payload struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

// NewEmbedPayload builds a single-embed message. Empty title or description
// fall back to the defaults; ANSI escape sequences are removed.
func NewEmbedPayload(title, description string) Payload {
	title = stripansi.Strip(title)
	if title == "" {
		title = DefaultTitle
	}
	description = stripansi.Strip(description)
	if description == "" {
		description = DefaultDescription
	}

	return Payload{
		Content: title,
		Embeds: []Embed{{
			Description: description,
			Color:       EmbedColor,
		}},
	}
}

// Marshal encodes the payload without HTML escaping.
func (p Payload) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
