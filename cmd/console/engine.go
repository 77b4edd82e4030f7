package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/dm-engine/internal/session"
	"github.com/jwebster45206/dm-engine/internal/storage"
	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// turnTimeout bounds a full user turn, which can include several model
// round trips while rolls resolve.
const turnTimeout = 5 * time.Minute

type sheetsLoadedMsg struct {
	sheets []*actor.SheetSpec
	err    error
}

type sessionStartedMsg struct {
	gameState *state.GameState
	err       error
}

type turnResultMsg struct {
	result    *session.TurnResult
	gameState *state.GameState
	err       error
}

type rollLogMsg struct {
	records []state.RollRecord
	err     error
}

// loadSheets lists the available character sheets, sorted by name.
func loadSheets(store storage.Storage) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ids, err := store.ListSheets(ctx)
		if err != nil {
			return sheetsLoadedMsg{nil, err}
		}
		if len(ids) == 0 {
			return sheetsLoadedMsg{nil, fmt.Errorf("no character sheets found")}
		}

		sheets := make([]*actor.SheetSpec, 0, len(ids))
		for _, id := range ids {
			spec, err := store.GetSheetSpec(ctx, id)
			if err != nil {
				return sheetsLoadedMsg{nil, fmt.Errorf("failed to load sheet %q: %w", id, err)}
			}
			sheets = append(sheets, spec)
		}
		sort.Slice(sheets, func(i, j int) bool { return sheets[i].Name < sheets[j].Name })
		return sheetsLoadedMsg{sheets, nil}
	}
}

func startSession(proc *session.Processor, sheetID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		gs, err := proc.StartSession(ctx, sheetID)
		return sessionStartedMsg{gs, err}
	}
}

// sendTurn runs a full conversation turn and reloads the saved game
// state so the meta panel reflects applied events.
func sendTurn(proc *session.Processor, store storage.Storage, gs *state.GameState, message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()

		result, err := proc.ProcessUserTurn(ctx, gs.ID, message)
		if err != nil {
			return turnResultMsg{nil, nil, err}
		}

		updated, err := store.LoadGameState(ctx, gs.ID)
		if err != nil {
			return turnResultMsg{result, nil, err}
		}
		return turnResultMsg{result, updated, nil}
	}
}

func loadRollLog(store storage.Storage, gs *state.GameState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		records, err := store.ListRolls(ctx, gs.ID)
		return rollLogMsg{records, err}
	}
}
