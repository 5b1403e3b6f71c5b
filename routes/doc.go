// Package routes describes navigation destinations and their access
// requirements.
//
// A [Table] indexes [Destination] values by name and by path. [Default] returns
// the portal table; [LoadTOML] builds one from a [[route]] file.
//
// # What this package must NOT do
//
//   - Read the credential store or make access decisions.
//   - Import goGuard or session.
package routes
