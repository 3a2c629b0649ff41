// Package logger provides structured logging for authkit using zerolog.
//
// Loggers are scoped by service and component, and accept fields as maps so
// call sites stay free of zerolog types:
//
//	log := logger.WithComponent("authn")
//	log.Info("user registered", logger.Fields(logger.FieldUserID, p.ID))
//
// Token values and passwords must never be passed as fields.
package logger
