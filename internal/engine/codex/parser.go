package codex

import (
	"bytes"
	"encoding/json"

	"github.com/jywlabs/lessongen/internal/engine"
)

// Parser parses Codex CLI JSONL output and keeps the last agent message.
type Parser struct {
	message    string
	hasMessage bool
	failure    string
	tokens     int
}

// NewParser creates a new Codex output parser.
func NewParser() *Parser {
	return &Parser{}
}

type codexEvent struct {
	Type string `json:"type"`
	Item *struct {
		Type   string `json:"type"`
		Text   string `json:"text"`
		Status string `json:"status"`
	} `json:"item"`
	Usage *struct {
		InputTokens       int `json:"input_tokens"`
		CachedInputTokens int `json:"cached_input_tokens"`
		OutputTokens      int `json:"output_tokens"`
	} `json:"usage"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// ParseLine parses a single JSON line and returns an Event for display,
// or nil if the line carries nothing worth showing.
func (p *Parser) ParseLine(line []byte) *engine.Event {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	var ev codexEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil
	}

	switch ev.Type {
	case "thread.started":
		return &engine.Event{Type: engine.EventInit}

	case "item.completed":
		if ev.Item == nil || ev.Item.Type != "agent_message" {
			return nil
		}
		p.message = ev.Item.Text
		p.hasMessage = true
		return &engine.Event{Type: engine.EventText, Detail: truncate(ev.Item.Text, 80)}

	case "turn.completed":
		if ev.Usage != nil {
			p.tokens += ev.Usage.InputTokens + ev.Usage.CachedInputTokens + ev.Usage.OutputTokens
		}
		return &engine.Event{
			Type: engine.EventResult,
			Data: engine.EventData{Success: p.failure == "", Tokens: p.tokens},
		}

	case "turn.failed", "error":
		msg := errorMessage(ev)
		if msg == "" {
			msg = "codex error"
		}
		p.failure = msg
		return &engine.Event{Type: engine.EventError, Data: engine.EventData{Message: msg}}
	}
	return nil
}

// Message returns the last agent message, if any.
func (p *Parser) Message() (string, bool) {
	return p.message, p.hasMessage
}

// Failure returns the last reported failure, or "".
func (p *Parser) Failure() string {
	return p.failure
}

// Tokens returns the accumulated token usage.
func (p *Parser) Tokens() int {
	return p.tokens
}

func errorMessage(ev codexEvent) string {
	if ev.Message != "" {
		return ev.Message
	}
	if len(ev.Error) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(ev.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(ev.Error, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Type
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
