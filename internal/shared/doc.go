// Package shared groups helpers used by more than one package that belong to
// no domain layer.
//
// The testutil subpackage captures slog output so tests can assert on log
// lines:
//
//	logger, handler := testutil.NewTestLogger(t)
//	svc := services.NewMarketService(logger, cfg, nil)
//	svc.Load(ctx)
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "dataset loaded")
package shared
