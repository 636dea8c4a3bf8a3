package rewrite

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/infrastructure/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGenerator struct {
	mock.Mock
	configured bool
}

func (m *mockGenerator) Configured() bool { return m.configured }

func (m *mockGenerator) GenerateContent(ctx context.Context, prompt string) (*gemini.Response, error) {
	args := m.Called(ctx, prompt)
	if r, _ := args.Get(0).(*gemini.Response); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func req(title, content, tone string) domain.RewriteRequest {
	return domain.RewriteRequest{Title: title, Content: content, Tone: tone}
}

// --- tests ---

func TestRewrite_BothFieldsEmpty_BadRequest(t *testing.T) {
	svc := NewService(&mockGenerator{})
	_, err := svc.Rewrite(context.Background(), req("  ", "\n", ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRewrite_NoCredential_HeuristicFallback(t *testing.T) {
	svc := NewService(&mockGenerator{configured: false})

	long := strings.Repeat("a", 300)
	res, err := svc.Rewrite(context.Background(), req("My Title", long, ""))
	require.NoError(t, err)

	assert.Equal(t, "My Title", res.Title)
	assert.Equal(t, long, res.Content)
	assert.Len(t, res.Summary, 120)
	assert.NotEmpty(t, res.Note)
}

func TestRewrite_NoCredential_TitleOnlyIsEnough(t *testing.T) {
	svc := NewService(&mockGenerator{configured: false})
	res, err := svc.Rewrite(context.Background(), req("Just a title", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "Just a title", res.Title)
	assert.Empty(t, res.Summary)
}

func TestRewrite_PromptCarriesToneAndInput(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Tone: formal") &&
			strings.Contains(prompt, "Title: T") &&
			strings.Contains(prompt, "Content: (none)")
	})).Return(&gemini.Response{StatusCode: 200, Body: []byte(`{"text":"ok"}`)}, nil)

	svc := NewService(gen)
	_, err := svc.Rewrite(context.Background(), req("T", "", "formal"))
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestRewrite_TransportFailure_BadGateway(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	svc := NewService(gen)
	_, err := svc.Rewrite(context.Background(), req("T", "C", ""))
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Contains(t, ue.Message, "Failed to call Gemini API: connection refused")
}

func TestRewrite_Status429_DegradesToHeuristic(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{StatusCode: 429, Body: []byte(`{}`)}, nil)

	svc := NewService(gen)
	res, err := svc.Rewrite(context.Background(), req("T", "C", ""))
	require.NoError(t, err)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "C", res.Content)
	assert.NotEmpty(t, res.Note)
}

func TestRewrite_InsufficientQuotaCode_DegradesToHeuristic(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{
			StatusCode: 403,
			Body:       []byte(`{"error":{"code":"insufficient_quota","message":"billing"}}`),
		}, nil)

	svc := NewService(gen)
	res, err := svc.Rewrite(context.Background(), req("T", "C", ""))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Note)
}

func TestRewrite_QuotaMessagePattern_DegradesToHeuristic(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{
			StatusCode: 400,
			Body:       []byte(`{"error":{"code":400,"message":"Rate Limit reached for this project"}}`),
		}, nil)

	svc := NewService(gen)
	res, err := svc.Rewrite(context.Background(), req("T", "C", ""))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Note)
}

func TestRewrite_UpstreamError_PropagatesStatusAndMessage(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{
			StatusCode: 400,
			Body:       []byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"bad prompt"}}`),
		}, nil)

	svc := NewService(gen)
	_, err := svc.Rewrite(context.Background(), req("T", "C", ""))
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 400, ue.Status)
	assert.Equal(t, "LLM error (400): bad prompt", ue.Message)
}

func TestRewrite_UpstreamErrorWithNonJSONBody(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{StatusCode: 503, Body: []byte("upstream overloaded")}, nil)

	svc := NewService(gen)
	_, err := svc.Rewrite(context.Background(), req("T", "C", ""))

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 503, ue.Status)
	assert.Equal(t, "LLM error (503): upstream overloaded", ue.Message)
}

func TestRewrite_SuccessWithNestedJSONPayload(t *testing.T) {
	// The canonical shape: candidates -> content -> parts -> text, where the
	// text is itself the JSON object the prompt asked for.
	body := `{"candidates":[{"content":[{"parts":[{"text":"{\"title\":\"T\",\"content\":\"C\",\"summary\":\"S\"}"}]}]}]}`
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{StatusCode: 200, Body: []byte(body)}, nil)

	svc := NewService(gen)
	res, err := svc.Rewrite(context.Background(), req("orig", "orig", ""))
	require.NoError(t, err)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "C", res.Content)
	assert.Equal(t, "S", res.Summary)
	assert.Empty(t, res.Note)
}

func TestRewrite_SuccessWithProsePayload_LineHeuristic(t *testing.T) {
	body := `{"text":"Title Line\nBody line\nSummary line"}`
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{StatusCode: 200, Body: []byte(body)}, nil)

	svc := NewService(gen)
	res, err := svc.Rewrite(context.Background(), req("orig", "orig", ""))
	require.NoError(t, err)
	assert.Equal(t, "Title Line", res.Title)
	assert.Equal(t, "Body line", res.Content)
	assert.Equal(t, "Summary line", res.Summary)
}

func TestRewrite_NonObjectJSONPayload_EchoesInputs(t *testing.T) {
	// A bare JSON array (or string, or number) is still a successful parse;
	// the inputs come back untouched instead of the line heuristic firing.
	body := `{"text":"[\"first\",\"second\",\"third\"]"}`
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{StatusCode: 200, Body: []byte(body)}, nil)

	svc := NewService(gen)
	res, err := svc.Rewrite(context.Background(), req("orig title", "orig content", ""))
	require.NoError(t, err)
	assert.Equal(t, "orig title", res.Title)
	assert.Equal(t, "orig content", res.Content)
	assert.Empty(t, res.Summary)
}

func TestRewrite_GarbageUpstreamBody_NeverErrors(t *testing.T) {
	gen := &mockGenerator{configured: true}
	gen.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.Response{StatusCode: 200, Body: []byte("not json at all")}, nil)

	svc := NewService(gen)
	res, err := svc.Rewrite(context.Background(), req("orig title", "orig content", ""))
	require.NoError(t, err)
	// Stringified empty body "{}" parses as JSON with no keys, so inputs win.
	assert.Equal(t, "orig title", res.Title)
	assert.Equal(t, "orig content", res.Content)
}
