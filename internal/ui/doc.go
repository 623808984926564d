// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view session and venue workflow:
//  1. [LoginView] : Authenticate with identifier/password and remember-me
//  2. [VenueListView] : Browse cached and live venues
//  3. [VenueDetailView] : Inspect a single venue's crowd status
//  4. [SyncView] : Monitor a background cache refresh in real time
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the VenueEngine, providing non-blocking status reporting during syncs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, s, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
