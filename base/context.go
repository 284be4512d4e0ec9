package base

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Context keeps the runtime data of a long running unit of work, e.g. one auto-connect task
type Context struct {
	UUID      uuid.UUID
	Reason    string
	GoContext context.Context
	logger    log.FieldLogger
}

// NewContext creates a Context with a given logger below a Go context
func NewContext(parent context.Context, logger log.FieldLogger, reason string) *Context {
	u := uuid.New()
	return &Context{UUID: u, logger: logger.WithField("uuid", u.String()), Reason: reason, GoContext: parent}
}

// NewBaseContext creates a cancelable root Context with a given logger
func NewBaseContext(logger log.FieldLogger) (*Context, context.CancelFunc) {
	u := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	return &Context{UUID: u, logger: logger, Reason: "base", GoContext: ctx}, cancel
}

// WithCancel derives a Context that can be cancelled independently of its parent
func WithCancel(parentContext *Context) (*Context, context.CancelFunc) {
	goCtx, cancel := context.WithCancel(parentContext.GoContext)
	ctx := &Context{UUID: parentContext.UUID, logger: parentContext.logger, Reason: parentContext.Reason, GoContext: goCtx}
	return ctx, cancel
}

// WithField derives a Context with a new ID and an additional logger field
func WithField(parentContext *Context, key string, value string) *Context {
	reason := key + ":" + value
	u := uuid.New()
	return &Context{UUID: u, logger: parentContext.logger.WithField(key, value).WithField("uuid", u.String()), Reason: reason, GoContext: parentContext.GoContext}
}

// GetID returns the string represantation of the ID of this context
func (c *Context) GetID() string {
	return c.UUID.String()
}

// GetReason returns the reason for the creation of this context
func (c *Context) GetReason() string {
	return c.Reason
}

// GetLogger returns a Logger with the proper fields added to identify the context
func (c *Context) GetLogger() log.FieldLogger {
	return c.logger
}

func (c *Context) Done() <-chan struct{} {
	return c.GoContext.Done()
}

func (c *Context) Err() error {
	return c.GoContext.Err()
}
