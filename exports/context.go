package exports

import (
	"context"
)

// CallContext is the context an entry point runs under. It carries the
// invoked export name so middleware can label logs and errors.
type CallContext interface {
	context.Context

	// FunctionName returns the name of the export being invoked.
	FunctionName() string
}

type callContext struct {
	context.Context
	funcName string
}

// NewCallContext creates a new CallContext wrapping the given context.
func NewCallContext(ctx context.Context, funcName string) CallContext {
	return &callContext{Context: ctx, funcName: funcName}
}

func (c *callContext) FunctionName() string {
	return c.funcName
}

// CallContextFrom returns ctx when it already is a CallContext for the same
// export, otherwise wraps it.
func CallContextFrom(ctx context.Context, funcName string) CallContext {
	if cc, ok := ctx.(CallContext); ok && cc.FunctionName() == funcName {
		return cc
	}
	return NewCallContext(ctx, funcName)
}

// FunctionName returns the export name carried by ctx, or "unknown".
func FunctionName(ctx context.Context) string {
	if cc, ok := ctx.(CallContext); ok {
		return cc.FunctionName()
	}
	return "unknown"
}
