// Package scanner discovers agent configuration artifacts on the local
// filesystem.
//
// A content root (for example ~/.claude or ./.claude) may contain any of:
//
//	commands/   markdown slash commands, nested directories become name:segments
//	agents/     markdown agent definitions, named like commands
//	mcp/        MCP server configs in JSON, JSONC or TOML
//	skills/     one directory per skill, each with a SKILL.md and companion files
//
// Scanning never fails. Problems such as unreadable directories, broken or
// chained symlinks and symlink cycles are collected as warnings next to the
// records that could still be extracted.
//
// # Symlinks
//
// A symlink is followed only when its immediate target is not itself a
// symlink. Directory cycles are cut by a visited set of canonical paths that
// lives for one ScanRoot call; separate roots never share it.
package scanner
