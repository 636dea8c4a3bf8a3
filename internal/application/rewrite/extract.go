package rewrite

import (
	"encoding/json"
	"strings"
)

// The upstream response shape is not stable across API versions and provider
// wrappers. extractText probes the known shapes in priority order and falls
// back to the stringified body, so it can never fail outright:
//
//  1. candidates[0].content (or .output) as an array of blocks, where a block
//     is a plain string, {text}, or {parts:[string|{text}]}; pieces are
//     newline-joined in encounter order. Or candidates[0].text as a string.
//  2. choices[0].message.content as a string, or its .parts newline-joined.
//  3. top-level "text" string.
//  4. top-level "output" or "result" string.
//  5. the whole body re-serialized, truncated to 2000 characters.
const maxStringifiedBody = 2000

func extractText(body []byte) string {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		data = map[string]interface{}{}
	}

	if raw := fromCandidates(data); raw != "" {
		return raw
	}
	if raw := fromChoices(data); raw != "" {
		return raw
	}
	if s, ok := data["text"].(string); ok && s != "" {
		return s
	}
	if s, ok := data["output"].(string); ok && s != "" {
		return s
	}
	if s, ok := data["result"].(string); ok && s != "" {
		return s
	}

	stringified, _ := json.Marshal(data)
	return truncate(string(stringified), maxStringifiedBody)
}

func fromCandidates(data map[string]interface{}) string {
	candidates, _ := data["candidates"].([]interface{})
	if len(candidates) == 0 {
		return ""
	}
	cand, _ := candidates[0].(map[string]interface{})
	if cand == nil {
		return ""
	}

	blocks := cand["content"]
	if blocks == nil {
		blocks = cand["output"]
	}
	if arr, ok := blocks.([]interface{}); ok {
		var pieces []string
		for _, block := range arr {
			switch b := block.(type) {
			case string:
				pieces = append(pieces, b)
			case map[string]interface{}:
				if s, ok := b["text"].(string); ok && s != "" {
					pieces = append(pieces, s)
				} else if parts, ok := b["parts"].([]interface{}); ok {
					for _, p := range parts {
						switch pv := p.(type) {
						case string:
							pieces = append(pieces, pv)
						case map[string]interface{}:
							if s, ok := pv["text"].(string); ok && s != "" {
								pieces = append(pieces, s)
							}
						}
					}
				}
			}
		}
		return strings.Join(pieces, "\n")
	}

	if s, ok := cand["text"].(string); ok {
		return s
	}
	return ""
}

func fromChoices(data map[string]interface{}) string {
	choices, _ := data["choices"].([]interface{})
	if len(choices) == 0 {
		return ""
	}
	choice, _ := choices[0].(map[string]interface{})
	if choice == nil {
		return ""
	}
	message, _ := choice["message"].(map[string]interface{})
	if message == nil {
		return ""
	}

	switch c := message["content"].(type) {
	case string:
		return c
	case map[string]interface{}:
		if parts, ok := c["parts"].([]interface{}); ok {
			pieces := make([]string, 0, len(parts))
			for _, p := range parts {
				switch pv := p.(type) {
				case string:
					pieces = append(pieces, pv)
				case map[string]interface{}:
					if s, ok := pv["text"].(string); ok {
						pieces = append(pieces, s)
					}
				}
			}
			return strings.Join(pieces, "\n")
		}
	}
	return ""
}
