package mailfred

import "log/slog"

// levelTrace sits below slog.LevelDebug, following the common slog
// convention for an extra verbosity tier (slog has no built-in Trace).
// It is used for the transient, expected "connection lost, retrying"
// drops that would otherwise be noise at Debug.
const levelTrace = slog.LevelDebug - 4
