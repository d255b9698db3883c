package errinfo

// ErrorInfo is the structured error carried alongside a user-facing message.
type ErrorInfo struct {
	ErrorCode  string   `json:"error_code"`
	Phase      string   `json:"phase,omitempty"`
	Retryable  bool     `json:"retryable"`
	Actions    []string `json:"actions,omitempty"`
	ProviderID string   `json:"provider_id,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

const (
	CodeInvalidCredential   = "INVALID_CREDENTIAL"
	CodeProviderAuthFailed  = "PROVIDER_AUTH_FAILED"
	CodeProviderError       = "PROVIDER_ERROR"
	CodeRequestFailed       = "REQUEST_FAILED"
	CodeEmptySelection      = "EMPTY_SELECTION"
	CodeSettingsWriteFailed = "SETTINGS_WRITE_FAILED"
)

const (
	ActionRetry        = "retry"
	ActionCheckAPIKey  = "check_api_key"
	ActionSelectLayers = "select_text_layers"
)

const (
	PhaseProcess  = "process"
	PhaseSettings = "settings"
)

const (
	MessageInvalidCredential = "Invalid API key format. Please check your OpenAI API key."
	MessageUnauthorized      = "Invalid API key. Please check your OpenAI API key and try again."
	MessageEmptySelection    = "Please select at least one text layer"
	MessageRequestFailed     = "API request failed"
)

// Message returns the text shown to the user for this error.
func (e *ErrorInfo) Message() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return e.Detail
	}
	return e.ErrorCode
}

func InvalidCredential(phase string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeInvalidCredential,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionCheckAPIKey},
		Detail:    MessageInvalidCredential,
	}
}

func ProviderAuthFailed(phase string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeProviderAuthFailed,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionCheckAPIKey},
		Detail:    MessageUnauthorized,
	}
}

func ProviderError(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeProviderError,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func RequestFailed(phase, detail string) *ErrorInfo {
	if detail == "" {
		detail = MessageRequestFailed
	}
	return &ErrorInfo{
		ErrorCode: CodeRequestFailed,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Detail:    detail,
	}
}

func EmptySelection(phase string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeEmptySelection,
		Phase:     phase,
		Retryable: false,
		Actions:   []string{ActionSelectLayers},
		Detail:    MessageEmptySelection,
	}
}

func SettingsWriteFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeSettingsWriteFailed,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Detail:    detail,
	}
}
