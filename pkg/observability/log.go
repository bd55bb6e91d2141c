package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// charmbracelet logger. The CLI registers it under --verbose.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnImportStart(_ context.Context, opCount int) {
	h.logger.Debug("import started", "ops", opCount)
}

func (h *LogHooks) OnImportComplete(_ context.Context, nodeCount, edgeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("import failed", "err", err, "took", d)
		return
	}
	h.logger.Debug("import finished", "nodes", nodeCount, "edges", edgeCount, "took", d)
}

func (h *LogHooks) OnTransformComplete(_ context.Context, rules, changed int, d time.Duration) {
	h.logger.Debug("rules applied", "rules", rules, "changed", changed, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render started", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render finished", "format", format, "bytes", size, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
