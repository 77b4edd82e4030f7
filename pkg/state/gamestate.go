package state

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/chat"
	"github.com/jwebster45206/dm-engine/pkg/events"
)

// NPC is the session's record of a non-player character, updated from
// npc_updates deltas and keyed by snake_case name.
type NPC struct {
	Name        string `json:"name"`
	Disposition string `json:"disposition,omitempty"` // e.g. "hostile", "neutral", "friendly"
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Companion is a party member traveling with the player.
type Companion struct {
	Name        string `json:"name"`
	Race        string `json:"race,omitempty"`
	Class       string `json:"class,omitempty"`
	Description string `json:"description,omitempty"`
	HP          int    `json:"hp,omitempty"`
	MaxHP       int    `json:"max_hp,omitempty"`
}

// Quest tracks one quest's lifecycle.
type Quest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
}

// RollRecord is one entry in the persisted roll history. Records are
// append-only: a roll that resolved before a cancellation or transport
// failure stays valid history.
type RollRecord struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Rolls       []int     `json:"rolls"`
	Modifier    int       `json:"modifier"`
	Total       int       `json:"total"`
	DC          int       `json:"dc,omitempty"`
	Success     bool      `json:"success"`
	IsDamage    bool      `json:"is_damage,omitempty"`
	IsCritical  bool      `json:"is_critical,omitempty"`
	IsCritFail  bool      `json:"is_crit_fail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Tally holds running campaign statistics.
type Tally struct {
	DamageDealt int `json:"damage_dealt"`
	DamageTaken int `json:"damage_taken"`
	Deaths      int `json:"deaths"`
}

// GameState is the current state of one DM session. It is a single
// mutable document: the parser and resolver describe changes, and only
// the EventWorker and the session processor mutate it.
type GameState struct {
	ID    uuid.UUID             `json:"id"`
	Sheet *actor.CharacterSheet `json:"character,omitempty"`

	Location string `json:"location,omitempty"`

	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Copper int `json:"copper"`
	XP     int `json:"xp"`

	Inventory []events.Item `json:"inventory,omitempty"`

	Conditions []string    `json:"conditions,omitempty"`
	Quests     []Quest     `json:"quests,omitempty"`
	Companions []Companion `json:"companions,omitempty"`

	InCombat         bool           `json:"in_combat"`
	PlayerInitiative int            `json:"player_initiative,omitempty"`
	Enemies          []*actor.Enemy `json:"enemies,omitempty"`

	// WorldFacts are append-only; the pipeline never edits or deletes one.
	WorldFacts []events.WorldFact `json:"world_facts,omitempty"`

	NPCs map[string]NPC `json:"npcs,omitempty"`

	// LastDeath holds the most recent player-death narrative marker. It
	// is not a terminal state; the story continues.
	LastDeath string `json:"last_death,omitempty"`

	Stats Tally `json:"stats"`

	ChatHistory []chat.ChatMessage `json:"chat_history,omitempty"`
	RollLog     []RollRecord       `json:"roll_log,omitempty"`

	IsEnded bool `json:"is_ended,omitempty"`
}

// NewGameState creates an empty session state for the given character.
func NewGameState(sheet *actor.CharacterSheet) *GameState {
	gs := &GameState{
		ID:          uuid.New(),
		Sheet:       sheet,
		NPCs:        make(map[string]NPC),
		ChatHistory: make([]chat.ChatMessage, 0),
		RollLog:     make([]RollRecord, 0),
	}
	if sheet != nil && sheet.Spec != nil {
		for _, name := range sheet.Spec.Inventory {
			gs.Inventory = append(gs.Inventory, events.Item{Name: name, Quantity: 1})
		}
	}
	return gs
}

// AddMessage appends a chat message to the transcript.
func (gs *GameState) AddMessage(role, content string, hidden bool) {
	gs.ChatHistory = append(gs.ChatHistory, chat.ChatMessage{
		Role:    role,
		Content: content,
		Hidden:  hidden,
	})
}

// AddRoll appends a roll record to the history.
func (gs *GameState) AddRoll(r RollRecord) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	gs.RollLog = append(gs.RollLog, r)
}

// Enemy returns the live enemy with the given id, or nil.
func (gs *GameState) Enemy(id string) *actor.Enemy {
	for _, e := range gs.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// ArmorClass returns the player's current armor class, the authoritative
// value for NPC attack resolution.
func (gs *GameState) ArmorClass() int {
	if gs.Sheet == nil {
		return 10
	}
	return gs.Sheet.AC()
}

// PromptHistoryLimit bounds how much transcript is replayed to the model.
const PromptHistoryLimit = 20

// HistoryForPrompt returns the most recent visible messages, newest last.
func (gs *GameState) HistoryForPrompt() []chat.ChatMessage {
	msgs := gs.ChatHistory
	if len(msgs) > PromptHistoryLimit {
		msgs = msgs[len(msgs)-PromptHistoryLimit:]
	}
	return msgs
}

// DeepCopy returns an independent copy of the game state via JSON
// round-trip, for handing to background work without data races.
func (gs *GameState) DeepCopy() (*GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, err
	}
	var cp GameState
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
