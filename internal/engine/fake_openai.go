package engine

import (
	"context"
	"net"
	"strings"

	"textassist/engine/internal/errinfo"
	"textassist/engine/internal/llm"
	"textassist/engine/internal/openai"
)

const (
	fakeNetworkMarker      = "[network-error]"
	fakeUnauthorizedMarker = "[unauthorized]"
	fakeProviderMarker     = "[provider-error]"
)

// NewFakeCompleter returns an offline Completer for UI development and
// end-to-end tests. Markers in the text select failure modes.
func NewFakeCompleter() Completer {
	return &fakeOpenAI{}
}

type fakeOpenAI struct{}

type fakeNetErr struct{}

func (fakeNetErr) Error() string   { return "network unavailable" }
func (fakeNetErr) Timeout() bool   { return true }
func (fakeNetErr) Temporary() bool { return true }

var _ net.Error = fakeNetErr{}

func (f *fakeOpenAI) Complete(ctx context.Context, text, apiKey, instructions string) (string, error) {
	if err := openai.ValidateCredential(apiKey); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &llm.Error{Kind: llm.ErrRequestFailed, Message: errinfo.MessageRequestFailed, Err: err}
	}
	switch {
	case strings.Contains(text, fakeNetworkMarker):
		return "", &llm.Error{Kind: llm.ErrRequestFailed, Message: errinfo.MessageRequestFailed, Err: fakeNetErr{}}
	case strings.Contains(text, fakeUnauthorizedMarker):
		return "", &llm.Error{Kind: llm.ErrUnauthorized, Status: 401, Message: errinfo.MessageUnauthorized}
	case strings.Contains(text, fakeProviderMarker):
		return "", &llm.Error{Kind: llm.ErrProvider, Status: 429, Message: "Rate limit reached for " + openai.Model}
	}
	improved := openai.Sanitize(text)
	if note := openai.Sanitize(instructions); note != "" {
		return improved + "\n\n(" + note + ")", nil
	}
	return improved, nil
}
