// Package service provides the business logic layer that turns recorded games
// into minimaps and match reports.
//
// The service package implements:
//   - Recorded game discovery in the replay directory
//   - Per-replay processing: parse, render the minimap, build the report
//   - Batch processing with per-file failure isolation
//   - Report lookup and listing through the record store
//
// Core Interfaces:
//
// ReplayService is the main service interface used by the CLI, the HTTP API
// and the MCP server. Renderer, ReportBuilder, LocaleManager and RecordStore
// are its collaborators; Notifier receives processing events.
//
// Processing:
//
// Rendering and report building read the same summary but do not depend on
// each other. When one fails the other still runs, the record keeps whatever
// was produced, and the returned error combines both failures. A batch never
// stops at a failing file; its result lists the failures and Err combines
// them.
//
// Usage:
//
//	svc := service.NewReplayService(service.Config{
//		ReplayDir: "games",
//		Parser:    replay.JSONParser{},
//		Renderer:  minimap.NewRenderer(minimap.Options{OutputDir: "static"}),
//		Locales:   localeManager,
//		Store:     fileStore,
//	})
//
//	batch, err := svc.ProcessAll(ctx, service.ProcessOptions{Workers: 4})
//	if err != nil {
//		log.Fatal(err) // no recorded games at all
//	}
//	fmt.Println(batch.Processed, batch.Failed)
package service
