// Package meeting generates joinable video-call URLs. Links are pure string
// templating over the chat id, so the same chat always resolves to the same
// room.
package meeting

import "fmt"

const defaultBaseURL = "https://meet.jit.si"

type Generator struct {
	baseURL string
}

func NewGenerator(baseURL string) *Generator {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Generator{baseURL: baseURL}
}

// Link returns the room URL for a chat. Deterministic and idempotent: repeated
// calls with the same chat id yield the same link.
func (g *Generator) Link(chatID string) string {
	return fmt.Sprintf("%s/matchfoundry-%s", g.baseURL, chatID)
}
