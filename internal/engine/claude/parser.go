package claude

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the final message of a print-mode run.
type Result struct {
	Text       string
	IsError    bool
	Tokens     int
	DurationMs float64
}

type resultMessage struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	Result     string  `json:"result"`
	DurationMs float64 `json:"duration_ms"`
	Usage      struct {
		InputTokens              int `json:"input_tokens"`
		OutputTokens             int `json:"output_tokens"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens"`
		CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	} `json:"usage"`
}

// ParseResult extracts the result message from `--output-format json`
// output. Stream output (one JSON object per line) is also accepted; the
// last result line wins.
func ParseResult(out []byte) (Result, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return Result{}, errors.New("empty response from claude")
	}

	var (
		msg   resultMessage
		found bool
	)
	for _, line := range bytes.Split(out, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var m resultMessage
		if err := json.Unmarshal(line, &m); err != nil {
			continue
		}
		if m.Type == "result" {
			msg, found = m, true
		}
	}
	if !found {
		return Result{}, fmt.Errorf("no result message in claude output: %s", truncate(string(out), 200))
	}

	u := msg.Usage
	return Result{
		Text:       msg.Result,
		IsError:    msg.IsError || (msg.Subtype != "" && msg.Subtype != "success"),
		Tokens:     u.InputTokens + u.OutputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens,
		DurationMs: msg.DurationMs,
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
