// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry initializes the OpenTelemetry SDK for decisioncore.
//
// The decision engine records spans and metrics through the otel API
// regardless of whether a backend is configured; this package is what turns
// those recordings into output. It wires the global TracerProvider and
// MeterProvider to stdout exporters, which is the right shape for a CLI
// tool: spans and metric snapshots land in the terminal or a redirect,
// no collector required.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(ctx)
//
//	// Now otel.Tracer() and otel.Meter() are configured
//
// # Environment Variables
//
// Standard OTel environment variables are supported:
//
//   - OTEL_TRACES_EXPORTER: stdout or none (default: stdout)
//   - OTEL_METRICS_EXPORTER: stdout or none (default: stdout)
//   - DECISIONCORE_ENV: environment name (default: development)
//
// # Thread Safety
//
// Init must be called once at startup, before any decisions run. The
// providers it installs are safe for concurrent use.
package telemetry
