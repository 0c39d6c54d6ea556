// Package engine executes assembled script Programs.
//
// The engine is a single-threaded, single-step interpreter: it holds a
// cursor into the current scene's instruction sequence and advances through
// it on demand, dispatching each instruction to a handler from the command
// registry and collecting the typed events the handlers emit for the
// presentation layer.
//
// ARCHITECTURE:
//
// Cooperative suspension:
// A step run executes consecutive non-blocking instructions (state
// mutations, staging changes, scene jumps) until one requires external
// completion - dialogue the player must dismiss - then suspends in
// AwaitingInput. The host resumes it with Advance() on a player-input
// event. There is no concurrency and no hidden call stack: the suspension
// point is an explicit state machine with a serializable cursor
// (scene id + instruction index), so it can be inspected, persisted, and
// survives hot reload.
//
// Single writer:
// The engine is the sole writer of GameState while a Program is loaded.
// Presentation subsystems observe state between AwaitInput and the matching
// Advance() through Snapshot(), never by mutating it. Reentrancy is not
// supported: callers must serialize Start/Advance/Rewind themselves.
//
// Dispatch:
// Commands are resolved through a Registry of Handler implementations keyed
// by name - extending the dialect means registering a handler, never
// touching the stepping core. The registry doubles as the assembler's
// CommandSet, so a loaded Program contains no instruction the registry
// would reject; the engine still re-checks required attributes defensively
// because the registry may be extended after a Program was assembled.
//
// ERROR HANDLING: Runtime errors (missing attribute, unknown command,
// unresolved scene) are fatal for the playthrough: the engine moves to
// Finished and surfaces a RuntimeError to the host. They are never
// swallowed and never crash the host process.
package engine
