// Package script implements the sabi scripting dialect front-end: the
// tokenizer, the per-line command parser, and the assembler that partitions
// a file's instructions into named scenes and produces an immutable Program.
//
// PIPELINE:
//
//	source text -> Tokenize (per line) -> Parse (per line) -> Assemble -> Program
//
// The dialect is deliberately flat: one instruction per line, a command name
// followed by key=value attributes. Values containing whitespace are wrapped
// in backticks. Lines starting with '#' and blank lines are ignored.
//
//	scene id=intro
//	say character=`Nayu` msg=`Hello there!`
//	set type=emotion character=Nayu emotion=happy
//	end
//
// A script may also skip the header entirely: instructions before any
// `scene id=` declaration form the implicit entry scene.
//
// ERROR POLICY:
//
// Loading is all-or-nothing. Syntax errors abort the file; assembly errors
// are collected so an author sees every problem in one pass, never just the
// first. No partial Program is ever produced, which guarantees the engine
// only executes fully validated scripts.
//
// Command recognition and attribute-shape validation happen at assembly
// through the CommandSet interface, implemented by the engine's dispatch
// registry. A Program therefore contains no instruction the dispatch table
// would reject at run time.
package script
