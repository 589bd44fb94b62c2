package commands

import (
	"errors"

	"shipping/internal/core/domain/model/quote"
	"shipping/internal/pkg/guard"
)

var ErrCreateQuoteCommandIsNotConstructed = errors.New(
	"CreateQuoteCommand must be created via NewCreateQuoteCommand constructor",
)

// CreateQuoteCommand asks for priced options of every eligible carrier.
//
// Example:
//
//	req, _ := quote.NewRequest(params)
//	cmd, err := NewCreateQuoteCommand(req)
//	session, err := handler.Handle(ctx, cmd)
type CreateQuoteCommand struct {
	request quote.Request

	guard guard.ConstructorGuard
}

func NewCreateQuoteCommand(request quote.Request) (CreateQuoteCommand, error) {
	if err := request.Validate(); err != nil {
		return CreateQuoteCommand{}, err
	}
	return CreateQuoteCommand{
		request: request,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CreateQuoteCommand) Validate() error {
	return c.guard.Validate(ErrCreateQuoteCommandIsNotConstructed)
}

func (c CreateQuoteCommand) Request() quote.Request {
	return c.request
}
