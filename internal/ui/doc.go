// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI wraps one export run:
//  1. [RunningView] : Spinner, per-playlist status line, and a progress bar
//     fed by the export loop's updates
//  2. [DoneView] : Final archive path, or the error that aborted the run
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel bridged from the export loop's
// synchronous callback, keeping the render loop non-blocking.
//
// q or ctrl+c cancels the run and quits.
package ui
