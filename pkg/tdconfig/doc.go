// Package tdconfig loads the engine's configuration from YAML with a
// second, env-var override pass, mirroring the teacher's own
// file-then-env resolution order (cmd/drift/internal/config). Validate
// rejects out-of-range fields before any engine is constructed, per the
// propagation policy that only initialization and registration expose
// errors to callers.
package tdconfig
