package engine

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"textassist/engine/internal/diff"
	"textassist/engine/internal/document"
	"textassist/engine/internal/errinfo"
)

// Inbound record types.
const (
	TypeCancel           = "cancel"
	TypeProcessText      = "process-text"
	TypeSaveInstructions = "save-instructions"
	TypeSelectionChange  = "selection-change"
)

// Outbound record types.
const (
	TypeSelectedText  = "selected-text"
	TypeLoadSavedData = "load-saved-data"
	TypeProcessResult = "process-result"
	TypeProcessDiff   = "process-diff"
)

// Command is a UI request. APIKey is only meaningful for process-text and
// Instructions for process-text and save-instructions.
type Command struct {
	Type         string `json:"type" validate:"required,oneof=cancel process-text save-instructions"`
	APIKey       string `json:"apiKey,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// SelectionChange is pushed by a host bridge that owns the canvas.
type SelectionChange struct {
	Type  string          `json:"type"`
	Nodes []document.Node `json:"nodes"`
}

type SelectedText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type LoadSavedData struct {
	Type         string `json:"type"`
	APIKey       string `json:"apiKey"`
	Instructions string `json:"instructions"`
}

// ProcessResult carries exactly one of Result or Error.
type ProcessResult struct {
	Type      string  `json:"type"`
	Result    *string `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
	ErrorCode string  `json:"error_code,omitempty"`
}

type ProcessDiff struct {
	Type string `json:"type"`
	diff.Result
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func DecodeCommand(raw []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if err := validate.Struct(cmd); err != nil {
		return Command{}, fmt.Errorf("invalid command %q: %w", cmd.Type, err)
	}
	return cmd, nil
}

func DecodeSelectionChange(raw []byte) (SelectionChange, error) {
	var msg SelectionChange
	if err := json.Unmarshal(raw, &msg); err != nil {
		return SelectionChange{}, fmt.Errorf("decode selection change: %w", err)
	}
	for i, node := range msg.Nodes {
		if node.ID == "" {
			return SelectionChange{}, fmt.Errorf("selection node %d has no id", i)
		}
	}
	return msg, nil
}

func selectedText(text string, count int) SelectedText {
	return SelectedText{Type: TypeSelectedText, Text: text, Count: count}
}

func processSuccess(result string) ProcessResult {
	return ProcessResult{Type: TypeProcessResult, Result: &result}
}

func processFailure(info *errinfo.ErrorInfo) ProcessResult {
	return ProcessResult{Type: TypeProcessResult, Error: info.Message(), ErrorCode: info.ErrorCode}
}
