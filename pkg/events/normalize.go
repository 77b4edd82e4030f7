package events

import "strings"

// Normalize maps an arbitrary decoded JSON object onto a fully-populated
// GameEvents. It is a total function: wrong types and missing fields
// degrade to documented defaults, never to an error. Normalizing an
// already-normalized envelope is a no-op (it is a projection).
func Normalize(raw map[string]any) *GameEvents {
	e := &GameEvents{
		RequestedRolls:    []RollRequest{},
		ItemsFound:        []Item{},
		ItemsLost:         []Item{},
		ConditionsGained:  []string{},
		ConditionsRemoved: []string{},
		QuestUpdates:      []QuestUpdate{},
		EnemyUpdates:      []EnemyUpdate{},
		AddCompanions:     []Companion{},
		UpdateCompanions:  []CompanionUpdate{},
		RemoveCompanions:  []string{},
		WorldFacts:        []WorldFact{},
		NPCUpdates:        []NPCUpdate{},
	}
	if raw == nil {
		return e
	}

	e.RequestedRolls = normalizeRolls(rawSlice(raw["requested_rolls"]))

	e.DamageDealt = nonNegInt(raw["damage_dealt"])
	e.DamageTaken = nonNegInt(raw["damage_taken"])
	e.Healing = nonNegInt(raw["healing"])
	e.GoldFound = nonNegInt(raw["gold_found"])
	e.GoldLost = nonNegInt(raw["gold_lost"])
	e.SilverFound = nonNegInt(raw["silver_found"])
	e.SilverLost = nonNegInt(raw["silver_lost"])
	e.CopperFound = nonNegInt(raw["copper_found"])
	e.CopperLost = nonNegInt(raw["copper_lost"])
	e.ExpAwarded = nonNegInt(raw["exp_awarded"])

	e.ItemsFound = normalizeItems(rawSlice(raw["items_found"]))
	e.ItemsLost = normalizeItems(rawSlice(raw["items_lost"]))

	if rest := strVal(raw["rest_taken"]); rest == RestShort || rest == RestLong {
		e.RestTaken = rest
	}

	e.ConditionsGained = strSlice(raw["conditions_gained"])
	e.ConditionsRemoved = strSlice(raw["conditions_removed"])

	for _, q := range rawSlice(raw["quest_updates"]) {
		obj, ok := q.(map[string]any)
		if !ok {
			continue
		}
		e.QuestUpdates = append(e.QuestUpdates, QuestUpdate{
			ID:          strVal(obj["id"]),
			Status:      strVal(obj["status"]),
			Name:        strVal(obj["name"]),
			Description: strVal(obj["description"]),
		})
	}

	e.Location = strVal(raw["location"])

	if cs, ok := raw["combat_start"].(map[string]any); ok {
		start := &CombatStart{
			Enemies:          []CombatEnemy{},
			PlayerInitiative: intVal(cs["player_initiative"]),
		}
		for _, en := range rawSlice(cs["enemies"]) {
			obj, ok := en.(map[string]any)
			if !ok {
				continue
			}
			start.Enemies = append(start.Enemies, CombatEnemy{
				Name:       strVal(obj["name"]),
				HP:         intVal(obj["hp"]),
				AC:         intVal(obj["ac"]),
				Initiative: intVal(obj["initiative"]),
			})
		}
		e.CombatStart = start
	}

	e.CombatEnd = boolVal(raw["combat_end"])

	for _, eu := range rawSlice(raw["enemy_updates"]) {
		obj, ok := eu.(map[string]any)
		if !ok {
			continue
		}
		update := EnemyUpdate{
			ID:         strVal(obj["id"]),
			Conditions: strSlice(obj["conditions"]),
			Defeated:   boolVal(obj["defeated"]),
		}
		if hp, ok := numVal(obj["hp"]); ok {
			v := hp
			update.HP = &v
		}
		e.EnemyUpdates = append(e.EnemyUpdates, update)
	}

	for _, c := range rawSlice(raw["add_companions"]) {
		obj, ok := c.(map[string]any)
		if !ok {
			continue
		}
		e.AddCompanions = append(e.AddCompanions, Companion{
			Name:        strVal(obj["name"]),
			Race:        strVal(obj["race"]),
			Class:       strVal(obj["class"]),
			Description: strVal(obj["description"]),
			HP:          intVal(obj["hp"]),
			MaxHP:       intVal(obj["max_hp"]),
		})
	}

	for _, c := range rawSlice(raw["update_companions"]) {
		obj, ok := c.(map[string]any)
		if !ok {
			continue
		}
		update := CompanionUpdate{
			Name:        strVal(obj["name"]),
			Description: strVal(obj["description"]),
		}
		if hp, ok := numVal(obj["hp"]); ok {
			v := hp
			update.HP = &v
		}
		e.UpdateCompanions = append(e.UpdateCompanions, update)
	}

	e.RemoveCompanions = strSlice(raw["remove_companions"])

	// World facts may arrive as bare strings; upgrade them to the
	// structured form with the "general" category.
	for _, f := range rawSlice(raw["world_facts"]) {
		switch v := f.(type) {
		case string:
			if v != "" {
				e.WorldFacts = append(e.WorldFacts, WorldFact{Fact: v, Category: FactGeneral})
			}
		case map[string]any:
			fact := strVal(v["fact"])
			if fact == "" {
				continue
			}
			e.WorldFacts = append(e.WorldFacts, WorldFact{
				Fact:     fact,
				Category: factCategory(strVal(v["category"])),
			})
		}
	}

	for _, n := range rawSlice(raw["npc_updates"]) {
		obj, ok := n.(map[string]any)
		if !ok {
			continue
		}
		e.NPCUpdates = append(e.NPCUpdates, NPCUpdate{
			Name:        strVal(obj["name"]),
			Disposition: strVal(obj["disposition"]),
			Description: strVal(obj["description"]),
			Location:    strVal(obj["location"]),
		})
	}

	if pd, ok := raw["player_death"].(map[string]any); ok {
		e.PlayerDeath = &PlayerDeath{Description: strVal(pd["description"])}
	}

	return e
}

func normalizeRolls(raw []any) []RollRequest {
	rolls := make([]RollRequest, 0, len(raw))
	for _, r := range raw {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		req := RollRequest{
			Type:         rollType(strVal(obj["type"])),
			Skill:        strVal(obj["skill"]),
			Ability:      strVal(obj["ability"]),
			DC:           DefaultDC,
			Description:  strVal(obj["description"]),
			Attacker:     strVal(obj["attacker"]),
			Notation:     strVal(obj["notation"]),
			Advantage:    boolVal(obj["advantage"]),
			Disadvantage: boolVal(obj["disadvantage"]),
		}
		if dc, ok := numVal(obj["dc"]); ok && dc > 0 {
			req.DC = dc
		}
		if mod, ok := numVal(obj["modifier"]); ok {
			v := mod
			req.Modifier = &v
		}
		rolls = append(rolls, req)
	}
	return rolls
}

func normalizeItems(raw []any) []Item {
	items := make([]Item, 0, len(raw))
	for _, it := range raw {
		switch v := it.(type) {
		case string:
			if v != "" {
				items = append(items, Item{Name: v, Quantity: 1})
			}
		case map[string]any:
			item := Item{
				Name:        strVal(v["name"]),
				Type:        strVal(v["type"]),
				Quantity:    intVal(v["quantity"]),
				Description: strVal(v["description"]),
			}
			if item.Name == "" {
				continue
			}
			if item.Quantity < 1 {
				item.Quantity = 1
			}
			items = append(items, item)
		}
	}
	return items
}

func rollType(t string) string {
	switch t {
	case RollSkillCheck, RollSavingThrow, RollAttack, RollNPCAttack, RollNPCSave, RollDamage:
		return t
	default:
		return RollSkillCheck
	}
}

func factCategory(c string) string {
	switch strings.ToLower(c) {
	case FactLore, FactCharacter, FactLocation, FactEvent, FactRelationship:
		return strings.ToLower(c)
	default:
		return FactGeneral
	}
}

// rawSlice defensively checks that the value really is a JSON array.
func rawSlice(v any) []any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

func strSlice(v any) []string {
	out := []string{}
	for _, item := range rawSlice(v) {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// numVal extracts an int from a decoded JSON number. encoding/json
// decodes numbers as float64.
func numVal(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func intVal(v any) int {
	n, _ := numVal(v)
	return n
}

// nonNegInt extracts an int and clamps negatives to zero; the scalar
// delta fields are documented as non-negative.
func nonNegInt(v any) int {
	n, ok := numVal(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

func strVal(v any) string {
	s, _ := v.(string)
	return s
}

func boolVal(v any) bool {
	b, _ := v.(bool)
	return b
}
