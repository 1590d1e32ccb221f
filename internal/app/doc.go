// Package app wires the market suite together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, .env, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Create the pipeline metrics, the market service and the event hub
//	4. Set up HTTP handlers and middleware
//	5. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(nil)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM. The server drains active requests, event
// subscribers get a close frame, the dataset watcher and cache janitors stop,
// and telemetry is flushed.
package app
