// Package tui plays a single arcade game in the terminal.
//
// The bubbletea model owns an engine.Runner on a real-time scheduler. The
// runner's change callback wakes the program through a one-slot channel and
// a 100ms frame tick keeps the clock display moving between transitions.
// Results go to the StatsSink passed in Options, so games played here land
// on the same leaderboard as games played over HTTP.
//
// Keys: enter moves Lobby to Ready to Playing and Over back to Ready, b
// goes back to the lobby outside play, r restarts, q quits. Arrow keys, space and w/a/s/d go through the input
// normalizer for Tetris, Snake and Flippy Bird; for Memory and the Puzzle
// the arrows move a cursor and space selects the cell under it.
package tui
