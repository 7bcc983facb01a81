// Package logger builds *slog.Logger instances for the client and the CLI.
//
// New creates a logger from functional options (level, format, output, static
// attributes). The handler it returns is wrapped with LogHandlerDecorator, which
// appends attributes stored in the context with ContextWithAttrs. The sso
// package uses this to tag every handshake record with a login correlation id
// without threading a child logger through each step.
//
// Attribute helpers in attr.go keep key names consistent:
//
//	log.DebugContext(ctx, "handshake step finished",
//	    logger.Step("signin_page"),
//	    logger.StatusCode(resp.StatusCode),
//	    logger.Duration(time.Since(start)),
//	)
//
// Error returns an empty attribute for a nil error, so it can be passed
// unconditionally.
package logger
