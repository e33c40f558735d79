package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/focusflow/internal/model"
)

type Type string

const (
	TypeAdd       Type = "add"
	TypeRename    Type = "rename"
	TypeFocus     Type = "focus"
	TypeMode      Type = "mode"
	TypeBreakdown Type = "breakdown"
	TypeReset     Type = "reset"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Text string
}

type RenameArgs struct {
	Text string
}

type ModeArgs struct {
	Mode model.TimerMode
}

type BreakdownArgs struct {
	Description string
}

type Command struct {
	Type      Type
	Raw       string
	Add       *AddArgs
	Rename    *RenameArgs
	Mode      *ModeArgs
	Breakdown *BreakdownArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.Join(parts[1:], " "))

	switch Type(head) {
	case TypeAdd:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
		}
		return Command{Type: TypeAdd, Raw: input, Add: &AddArgs{Text: rest}}, nil
	case TypeRename:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "rename requires new text"}
		}
		return Command{Type: TypeRename, Raw: input, Rename: &RenameArgs{Text: rest}}, nil
	case TypeFocus, TypeReset:
		return Command{Type: Type(head), Raw: input}, nil
	case TypeMode:
		return parseMode(input, parts[1:])
	case TypeBreakdown:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "breakdown requires a task description"}
		}
		return Command{Type: TypeBreakdown, Raw: input, Breakdown: &BreakdownArgs{Description: rest}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseMode(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "mode requires work, short or long"}
	}
	mode, err := model.ParseMode(strings.Join(args, "-"))
	if errors.Is(err, model.ErrInvalidMode) {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown mode: %s", strings.Join(args, " "))}
	}
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeMode, Raw: raw, Mode: &ModeArgs{Mode: mode}}, nil
}
