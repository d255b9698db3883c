// Package config resolves engine configuration from the environment, with
// command-line flags applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"textassist/engine/internal/appdirs"
	"textassist/engine/internal/envutil"
	"textassist/engine/internal/openai"
)

const (
	EnvDebug         = "TEXTASSIST_DEBUG"
	EnvSelectionFile = "TEXTASSIST_SELECTION_FILE"
	EnvBaseURL       = "TEXTASSIST_OPENAI_BASE_URL"
	EnvFakeOpenAI    = "TEXTASSIST_FAKE_OPENAI"
)

type Config struct {
	DataDir       string `validate:"required"`
	Debug         bool
	SelectionFile string
	BaseURL       string `validate:"required,url,startswith=https://"`
	FakeOpenAI    bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func FromEnv() (Config, error) {
	dataDir, err := appdirs.DataDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DataDir:       dataDir,
		Debug:         envutil.Bool(EnvDebug),
		SelectionFile: envutil.String(EnvSelectionFile, ""),
		BaseURL:       envutil.String(EnvBaseURL, openai.DefaultBaseURL),
		FakeOpenAI:    envutil.Bool(EnvFakeOpenAI),
	}, nil
}

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}
