package state

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/events"
)

// EventWorker encapsulates the logic for applying a normalized event
// envelope to game state. Rolls are consumed before events get here; the
// worker only handles the declarative state deltas.
type EventWorker struct {
	gs     *GameState
	ev     *events.GameEvents
	logger *slog.Logger
	ctx    context.Context
}

// NewEventWorker creates a worker for applying one envelope of events.
func NewEventWorker(gs *GameState, ev *events.GameEvents, logger *slog.Logger) *EventWorker {
	return &EventWorker{
		gs:     gs,
		ev:     ev,
		logger: logger,
		ctx:    context.Background(),
	}
}

// WithContext sets the context for logging correlation.
// Returns the EventWorker for method chaining.
func (ew *EventWorker) WithContext(ctx context.Context) *EventWorker {
	ew.ctx = ctx
	return ew
}

// Apply applies the event envelope to the game state. Applying a
// zero-value envelope is a no-op. Apply never partially fails: every
// delta is clamped or skipped, not rejected.
func (ew *EventWorker) Apply() error {
	if ew.ev == nil {
		return nil
	}

	ew.applyHealth()
	ew.applyCurrency()
	ew.applyItems()
	ew.applyRest()
	ew.applyConditions()
	ew.applyQuests()

	if ew.ev.Location != "" && ew.ev.Location != ew.gs.Location {
		if ew.logger != nil {
			ew.logger.Info("Location changed",
				"from", ew.gs.Location,
				"to", ew.ev.Location)
		}
		ew.gs.Location = ew.ev.Location
	}

	ew.applyCombat()
	ew.applyCompanions()

	// World facts are append-only. Existing facts are never edited.
	ew.gs.WorldFacts = append(ew.gs.WorldFacts, ew.ev.WorldFacts...)

	ew.applyNPCs()

	if ew.ev.PlayerDeath != nil {
		ew.gs.LastDeath = ew.ev.PlayerDeath.Description
		ew.gs.Stats.Deaths++
		if ew.logger != nil {
			ew.logger.Info("Player death recorded",
				"game_id", ew.gs.ID.String(),
				"description", ew.ev.PlayerDeath.Description)
		}
	}

	return nil
}

func (ew *EventWorker) applyHealth() {
	ev := ew.ev
	if ev.DamageDealt > 0 {
		ew.gs.Stats.DamageDealt += ev.DamageDealt
	}
	if ev.DamageTaken > 0 {
		ew.gs.Stats.DamageTaken += ev.DamageTaken
		if ew.gs.Sheet != nil {
			ew.gs.Sheet.TakeDamage(ev.DamageTaken)
		}
	}
	if ev.Healing > 0 && ew.gs.Sheet != nil {
		ew.gs.Sheet.Heal(ev.Healing)
	}
	if ev.ExpAwarded > 0 {
		ew.gs.XP += ev.ExpAwarded
	}
}

func (ew *EventWorker) applyCurrency() {
	ev := ew.ev
	ew.gs.Gold = clampZero(ew.gs.Gold + ev.GoldFound - ev.GoldLost)
	ew.gs.Silver = clampZero(ew.gs.Silver + ev.SilverFound - ev.SilverLost)
	ew.gs.Copper = clampZero(ew.gs.Copper + ev.CopperFound - ev.CopperLost)
}

// applyItems merges found items into the inventory by name and decrements
// lost items, removing entries that reach zero quantity.
func (ew *EventWorker) applyItems() {
	for _, item := range ew.ev.ItemsFound {
		if idx := ew.findItem(item.Name); idx >= 0 {
			ew.gs.Inventory[idx].Quantity += item.Quantity
			continue
		}
		ew.gs.Inventory = append(ew.gs.Inventory, item)
	}
	for _, item := range ew.ev.ItemsLost {
		idx := ew.findItem(item.Name)
		if idx < 0 {
			if ew.logger != nil {
				ew.logger.Warn("Lost item not in inventory", "item", item.Name)
			}
			continue
		}
		ew.gs.Inventory[idx].Quantity -= item.Quantity
		if ew.gs.Inventory[idx].Quantity <= 0 {
			ew.gs.Inventory = append(ew.gs.Inventory[:idx], ew.gs.Inventory[idx+1:]...)
		}
	}
}

func (ew *EventWorker) findItem(name string) int {
	for i, item := range ew.gs.Inventory {
		if strings.EqualFold(item.Name, name) {
			return i
		}
	}
	return -1
}

// applyRest restores hit points. A long rest restores to maximum; a short
// rest recovers half of maximum, rounded down.
func (ew *EventWorker) applyRest() {
	if ew.gs.Sheet == nil {
		return
	}
	switch ew.ev.RestTaken {
	case events.RestLong:
		ew.gs.Sheet.Heal(ew.gs.Sheet.MaxHP())
		ew.gs.Conditions = nil
	case events.RestShort:
		ew.gs.Sheet.Heal(ew.gs.Sheet.MaxHP() / 2)
	}
}

func (ew *EventWorker) applyConditions() {
	for _, cond := range ew.ev.ConditionsGained {
		if !containsFold(ew.gs.Conditions, cond) {
			ew.gs.Conditions = append(ew.gs.Conditions, cond)
		}
	}
	for _, cond := range ew.ev.ConditionsRemoved {
		for i, existing := range ew.gs.Conditions {
			if strings.EqualFold(existing, cond) {
				ew.gs.Conditions = append(ew.gs.Conditions[:i], ew.gs.Conditions[i+1:]...)
				break
			}
		}
	}
}

// applyQuests appends new quests and completes existing ones, matching by
// id first and name second.
func (ew *EventWorker) applyQuests() {
	for _, qu := range ew.ev.QuestUpdates {
		switch qu.Status {
		case "new":
			id := qu.ID
			if id == "" {
				id = toSnakeCase(strings.ToLower(qu.Name))
			}
			if ew.findQuest(id, qu.Name) >= 0 {
				continue
			}
			ew.gs.Quests = append(ew.gs.Quests, Quest{
				ID:          id,
				Name:        qu.Name,
				Description: qu.Description,
			})
		case "completed":
			idx := ew.findQuest(qu.ID, qu.Name)
			if idx < 0 {
				if ew.logger != nil {
					ew.logger.Warn("Completed quest not found",
						"id", qu.ID,
						"name", qu.Name)
				}
				continue
			}
			ew.gs.Quests[idx].Completed = true
		}
	}
}

func (ew *EventWorker) findQuest(id, name string) int {
	for i, q := range ew.gs.Quests {
		if id != "" && q.ID == id {
			return i
		}
		if name != "" && strings.EqualFold(q.Name, name) {
			return i
		}
	}
	return -1
}

// applyCombat handles combat start, per-enemy updates, and combat end.
// Enemy ids are assigned at combat start and stay stable for the fight.
func (ew *EventWorker) applyCombat() {
	ev := ew.ev

	if ev.CombatStart != nil {
		ew.gs.InCombat = true
		ew.gs.PlayerInitiative = ev.CombatStart.PlayerInitiative
		ew.gs.Enemies = nil
		ordinals := make(map[string]int)
		for _, ce := range ev.CombatStart.Enemies {
			ordinals[ce.Name]++
			ew.gs.Enemies = append(ew.gs.Enemies,
				actor.NewEnemy(ce.Name, ordinals[ce.Name], ce.HP, ce.AC, ce.Initiative))
		}
		if ew.logger != nil {
			ew.logger.Info("Combat started",
				"game_id", ew.gs.ID.String(),
				"enemy_count", len(ew.gs.Enemies),
				"player_initiative", ew.gs.PlayerInitiative)
		}
	}

	for _, upd := range ev.EnemyUpdates {
		enemy := ew.gs.Enemy(upd.ID)
		if enemy == nil {
			if ew.logger != nil {
				ew.logger.Warn("Enemy update for unknown id", "id", upd.ID)
			}
			continue
		}
		if upd.HP != nil {
			enemy.SetHP(*upd.HP)
		}
		for _, cond := range upd.Conditions {
			enemy.AddCondition(cond)
		}
		if upd.Defeated {
			enemy.SetHP(0)
		}
	}

	if ev.CombatEnd {
		ew.gs.InCombat = false
		ew.gs.PlayerInitiative = 0
		ew.gs.Enemies = nil
	}
}

func (ew *EventWorker) applyCompanions() {
	ev := ew.ev

	for _, c := range ev.AddCompanions {
		if ew.findCompanion(c.Name) >= 0 {
			continue
		}
		ew.gs.Companions = append(ew.gs.Companions, Companion{
			Name:        c.Name,
			Race:        c.Race,
			Class:       c.Class,
			Description: c.Description,
			HP:          c.HP,
			MaxHP:       c.MaxHP,
		})
	}

	for _, upd := range ev.UpdateCompanions {
		idx := ew.findCompanion(upd.Name)
		if idx < 0 {
			if ew.logger != nil {
				ew.logger.Warn("Update for unknown companion", "name", upd.Name)
			}
			continue
		}
		if upd.HP != nil {
			hp := clampZero(*upd.HP)
			if max := ew.gs.Companions[idx].MaxHP; max > 0 && hp > max {
				hp = max
			}
			ew.gs.Companions[idx].HP = hp
		}
		if upd.Description != "" {
			ew.gs.Companions[idx].Description = upd.Description
		}
	}

	for _, name := range ev.RemoveCompanions {
		idx := ew.findCompanion(name)
		if idx < 0 {
			continue
		}
		ew.gs.Companions = append(ew.gs.Companions[:idx], ew.gs.Companions[idx+1:]...)
	}
}

func (ew *EventWorker) findCompanion(name string) int {
	for i, c := range ew.gs.Companions {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// applyNPCs upserts NPC records keyed by snake_case name. Empty fields on
// an update leave the existing value intact.
func (ew *EventWorker) applyNPCs() {
	for _, upd := range ew.ev.NPCUpdates {
		if upd.Name == "" {
			continue
		}
		key := toSnakeCase(strings.ToLower(upd.Name))
		if ew.gs.NPCs == nil {
			ew.gs.NPCs = make(map[string]NPC)
		}
		npc, ok := ew.gs.NPCs[key]
		if !ok {
			npc = NPC{Name: upd.Name}
		}
		if upd.Disposition != "" {
			npc.Disposition = upd.Disposition
		}
		if upd.Description != "" {
			npc.Description = upd.Description
		}
		if upd.Location != "" {
			npc.Location = upd.Location
		}
		ew.gs.NPCs[key] = npc
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// toSnakeCase converts a string to lower snake_case.
func toSnakeCase(s string) string {
	var out strings.Builder
	prevUnderscore := false
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		if r == ' ' || r == '-' || r == '.' || r == '_' {
			if !prevUnderscore && i > 0 {
				out.WriteRune('_')
				prevUnderscore = true
			}
			continue
		}
		out.WriteRune(r)
		prevUnderscore = false
	}
	return out.String()
}
