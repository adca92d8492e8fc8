// Package build runs the end-to-end site build.
//
// A build is a fixed sequence of stages: pre-build hooks, discovery, page
// parsing, route table construction, navigation, the compile loop and the
// post-build task pipeline. All execution paths (CLI, tests) go through
// Orchestrator, which implements BuildService.
//
// Failures in discovery, parsing and routing abort the build. A page that
// fails to compile stops the loop for its page type only; the build still
// reports failure. Post-build task failures are collected as warnings unless
// the project treats warnings as fatal.
package build
