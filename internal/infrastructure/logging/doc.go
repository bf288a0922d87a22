// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for the host's log collector
//   - Development: colored console output
//
// Domain packages (session, bridge, search) take a plain *zap.Logger and
// treat nil as a no-op logger; the composition root hands them
// Logger.Component("registry") and friends.
//
// Example Usage:
//
//	logger, err := logging.New(logging.ConfigFor(cfg.Logging.Level, cfg.Logging.Development))
//	logger.Info("Server starting", zap.String("port", "8000"))
//	registry := session.NewRegistry(view, factory, session.WithLogger(logger.Component("registry")))
package logging
