// Package search finds text across open sessions and the virtual
// filesystem.
//
// Open sessions are searched through their live buffer content under their
// file path, or their name when they have no file. VFS paths that are not
// open are searched from stored content unless Options.OpenEditorsOnly is
// set. Queries are literal by default; regex queries use the ECMAScript
// dialect with a per-match timeout.
//
// Include and exclude filters are comma-separated globs matched against the
// whole path, case-insensitively. Unlike vfs.Glob, '*' and '**' both cross
// '/' here, so "*.lua" matches "lua/autorun/init.lua".
//
// Search never mutates anything. Activate is the one path from a result
// back into the session registry.
package search
