package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mtcat/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgHarvestComplete
)

type harvestOutcome struct {
	result *tasks.HarvestResult
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// harvestCompleteMsg is the constructor for [MsgHarvestComplete]
func harvestCompleteMsg(result *tasks.HarvestResult, err error) Msg {
	return Msg{kind: MsgHarvestComplete, data: harvestOutcome{result, err}}
}
