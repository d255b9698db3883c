package openai

import (
	"github.com/go-playground/validator/v10"

	"textassist/engine/internal/errinfo"
	"textassist/engine/internal/llm"
)

const (
	CredentialPrefix    = "sk-"
	MinCredentialLength = 51
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// credentialRule mirrors the shape of an OpenAI secret key.
const credentialRule = "required,startswith=sk-,min=51"

// ValidateCredential checks the key's shape without touching the network.
func ValidateCredential(apiKey string) error {
	if err := validate.Var(apiKey, credentialRule); err != nil {
		return &llm.Error{
			Kind:    llm.ErrInvalidCredential,
			Message: errinfo.MessageInvalidCredential,
			Err:     err,
		}
	}
	return nil
}
