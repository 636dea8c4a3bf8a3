package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ngo-connect-api/internal/application/rewrite"
	"github.com/ngo-connect-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRewriteSvc struct{ mock.Mock }

func (m *mockRewriteSvc) Rewrite(ctx context.Context, req domain.RewriteRequest) (*domain.RewriteResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.RewriteResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func postRewrite(t *testing.T, h *RewriteHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/rewrite", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.Rewrite(rr, req)
	return rr
}

func TestRewrite_Success(t *testing.T) {
	svc := new(mockRewriteSvc)
	h := NewRewriteHandler(svc)

	svc.On("Rewrite", mock.Anything, domain.RewriteRequest{Title: "t", Content: "c", Tone: "formal"}).
		Return(&domain.RewriteResult{Title: "T", Content: "C", Summary: "S"}, nil)

	rr := postRewrite(t, h, `{"title":"t","content":"c","tone":"formal"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var out domain.RewriteResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "T", out.Title)
	assert.Equal(t, "S", out.Summary)
}

func TestRewrite_EmptyInputIs400(t *testing.T) {
	svc := new(mockRewriteSvc)
	h := NewRewriteHandler(svc)

	svc.On("Rewrite", mock.Anything, mock.Anything).
		Return(nil, domain.ErrBadRequest)

	rr := postRewrite(t, h, `{"title":"","content":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRewrite_UpstreamStatusPassedThrough(t *testing.T) {
	svc := new(mockRewriteSvc)
	h := NewRewriteHandler(svc)

	svc.On("Rewrite", mock.Anything, mock.Anything).
		Return(nil, &rewrite.UpstreamError{Status: http.StatusBadGateway, Message: "Failed to call Gemini API: dial tcp: timeout"})

	rr := postRewrite(t, h, `{"title":"t"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var out MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Contains(t, out.Error, "Failed to call Gemini API")
}

func TestRewrite_MalformedBodyIs400(t *testing.T) {
	h := NewRewriteHandler(new(mockRewriteSvc))
	rr := postRewrite(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRewrite_PanicYieldsJSON500(t *testing.T) {
	svc := new(mockRewriteSvc)
	h := NewRewriteHandler(svc)

	svc.On("Rewrite", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil)

	rr := postRewrite(t, h, `{"title":"t"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var out MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "Failed to rewrite content", out.Error)
}
