// Package logging provides structured logging for the application shell.
//
// This package wraps Go's log/slog to produce JSON lines with persistent
// context attributes. The lifecycle controller, the staged-task workers and
// the render thread all log through children of one root Logger, so a single
// file shows how the three threads interleave during bring-up.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("texture loaded", "role", "start", "bytes", 2048)
//
// # Context Propagation
//
//	stageLogger := logger.WithStage("engine-init")
//	stageLogger.Debug("poll", "progress", 45)
//
//	sessionLogger := logger.WithSession(handle.ID())
//	sessionLogger.Info("camera started")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"camera started","session_id":"6f1c..."}
//
// # Runtime Level Changes
//
// All children share the root's level. [Logger.SetLevel] on any of them
// changes the level everywhere, which is how a config reload applies a new
// logging.level without restarting.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] with a
// bytes.Buffer to assert on what was logged.
package logging
