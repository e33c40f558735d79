package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add       func(AddArgs) (Result, error)
	Rename    func(RenameArgs) (Result, error)
	Focus     func() (Result, error)
	Mode      func(ModeArgs) (Result, error)
	Breakdown func(BreakdownArgs) (Result, error)
	Reset     func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeRename:
		if handlers.Rename == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Rename(*cmd.Rename)
	case TypeFocus:
		if handlers.Focus == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Focus()
	case TypeMode:
		if handlers.Mode == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Mode(*cmd.Mode)
	case TypeBreakdown:
		if handlers.Breakdown == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Breakdown(*cmd.Breakdown)
	case TypeReset:
		if handlers.Reset == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Reset()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
