package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/infrastructure/gemini"
)

// The composer's "enhance" action must never hard-fail just because the
// upstream provider is unavailable, unauthorized or out of quota. Anything
// short of a transport failure or a genuine upstream application error is
// degraded to a heuristic rewrite of the caller's own text.

const (
	summaryLimit = 120

	noteNoCredential = "Gemini key not set - used heuristic rewrite."
	noteQuota        = "AI quota exceeded - used heuristic rewrite."
)

var quotaPattern = regexp.MustCompile(`(?i)quota|rate limit`)

// UpstreamError is an upstream failure that could not be degraded. Status is
// the HTTP status the caller should see.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string { return e.Message }

type Service interface {
	Rewrite(ctx context.Context, req domain.RewriteRequest) (*domain.RewriteResult, error)
}

type service struct {
	llm gemini.Generator
}

func NewService(llm gemini.Generator) Service {
	return &service{llm: llm}
}

func (s *service) Rewrite(ctx context.Context, req domain.RewriteRequest) (*domain.RewriteResult, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = "friendly"
	}

	if title == "" && content == "" {
		return nil, fmt.Errorf("missing title/content: %w", domain.ErrBadRequest)
	}

	if s.llm == nil || !s.llm.Configured() {
		return heuristic(title, content, noteNoCredential), nil
	}

	resp, err := s.llm.GenerateContent(ctx, buildPrompt(title, content, tone))
	if err != nil {
		return nil, &UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "Failed to call Gemini API: " + err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code, message := parseUpstreamError(resp)
		if isQuotaError(resp.StatusCode, code, message) {
			return heuristic(title, content, noteQuota), nil
		}
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return nil, &UpstreamError{
			Status:  status,
			Message: fmt.Sprintf("LLM error (%s): %s", code, message),
		}
	}

	return normalize(extractText(resp.Body), title, content), nil
}

func buildPrompt(title, content, tone string) string {
	return strings.Join([]string{
		"Rewrite the following for clarity and engagement. Maintain facts and friendly tone.",
		"Tone: " + tone,
		"Return JSON with keys: title, content, summary (<=40 words).",
		"Input:",
		"Title: " + orNone(title),
		"Content: " + orNone(content),
	}, "\n")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// heuristic echoes the input back with a naive summary and an explanatory note.
func heuristic(title, content, note string) *domain.RewriteResult {
	return &domain.RewriteResult{
		Title:   title,
		Content: content,
		Summary: truncate(content, summaryLimit),
		Note:    note,
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// parseUpstreamError pulls a code and message out of a non-2xx upstream body.
// The body may be Google-style ({"error":{code,status,message}}), some other
// provider's JSON, or not JSON at all.
func parseUpstreamError(resp *gemini.Response) (code, message string) {
	raw := strings.TrimSpace(string(resp.Body))

	var payload struct {
		Error struct {
			Code    interface{} `json:"code"`
			Status  string      `json:"status"`
			Message string      `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(resp.Body, &payload)

	switch v := payload.Error.Code.(type) {
	case string:
		code = v
	case float64:
		code = strconv.Itoa(int(v))
	}
	if code == "" {
		code = payload.Error.Status
	}
	if code == "" {
		code = strconv.Itoa(resp.StatusCode)
	}

	message = payload.Error.Message
	if message == "" {
		message = raw
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if message == "" {
		message = "Unknown LLM error"
	}
	return code, message
}

func isQuotaError(status int, code, message string) bool {
	return code == "insufficient_quota" ||
		status == http.StatusTooManyRequests ||
		quotaPattern.MatchString(message)
}

// normalize turns the extracted raw text into the stable result shape. The
// model is asked for JSON, but the raw text may be prose; the line heuristic
// covers that, and the inputs cover everything else.
func normalize(raw, title, content string) *domain.RewriteResult {
	res := &domain.RewriteResult{Title: title, Content: content}

	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		// Non-object JSON (a bare string, number or array) still counts as a
		// successful parse; the inputs are echoed with an empty summary.
		if obj, ok := parsed.(map[string]interface{}); ok {
			res.Title = stringOr(obj["title"], title)
			res.Content = stringOr(obj["content"], content)
			res.Summary = stringOr(obj["summary"], "")
		}
		return res
	}

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return res
	}

	res.Title = lines[0]
	if len(lines) >= 2 {
		res.Summary = lines[len(lines)-1]
		if middle := strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n")); middle != "" {
			res.Content = middle
		}
	}
	return res
}

func stringOr(v interface{}, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
