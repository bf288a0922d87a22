/*
Package monitoring provides Prometheus metrics for the editor server.

# Overview

Metrics cover the HTTP surface, the session registry, notifications pushed
to the host, search runs, the completion feed and connected host clients.
Each Metrics value owns a private registry; expose it with Handler.

# Usage

	metrics := monitoring.NewMetrics()
	defer metrics.Close()

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	registry := session.NewRegistry(view, editor.NewBuffer, session.WithMetrics(metrics))

A nil *Metrics is valid and records nothing.
*/
package monitoring
