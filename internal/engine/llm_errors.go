package engine

import (
	"context"
	"errors"

	"textassist/engine/internal/errinfo"
	"textassist/engine/internal/llm"
)

const providerOpenAI = "openai"

func mapLLMError(phase string, err error) *errinfo.ErrorInfo {
	if errors.Is(err, llm.ErrInvalidCredential) {
		return errinfo.InvalidCredential(phase)
	}
	if errors.Is(err, llm.ErrUnauthorized) {
		info := errinfo.ProviderAuthFailed(phase)
		info.ProviderID = providerOpenAI
		return info
	}
	if errors.Is(err, llm.ErrProvider) {
		info := errinfo.ProviderError(phase, err.Error())
		info.ProviderID = providerOpenAI
		return info
	}
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		info := errinfo.RequestFailed(phase, llmErr.Message)
		info.ProviderID = providerOpenAI
		return info
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errinfo.RequestFailed(phase, "request canceled")
	}
	info := errinfo.RequestFailed(phase, err.Error())
	info.ProviderID = providerOpenAI
	return info
}
