// Package channel provides the base every release channel is built on.
//
// A channel is one place a project's version lives: an npm package manifest,
// a git tag, and so on. The base locates the project root by walking up from
// a start directory until it finds the marker file (release.json by default),
// offers JSON helpers relative to that root, and dispatches the release
// lifecycle to optional capabilities the concrete channel implements.
//
// Key concepts:
//   - Base: root resolution, root-relative files, logging and lifecycle dispatch
//   - Capabilities: NameProvider, RootPredicate, VersionGetter, VersionSetter
//     and ConflictChecker; anything not implemented falls back to a default
//   - Reply and Completion: hooks answer immediately or promise to resolve a
//     single-shot completion later
//   - Outcome: the tri-state result of SetVersion
package channel
