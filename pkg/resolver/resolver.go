// Package resolver turns requested rolls into dice outcomes. It is the
// deterministic half of the roll loop: given a batch of roll requests and
// the live character sheet, it produces authoritative results the model
// must narrate around. Conversation recursion lives in internal/session.
package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/dice"
	"github.com/jwebster45206/dm-engine/pkg/events"
	"github.com/jwebster45206/dm-engine/pkg/rules"
)

// Resolver resolves roll request batches against a character sheet.
type Resolver struct {
	src    dice.Source
	logger *slog.Logger
}

// New creates a Resolver using the cryptographic dice source.
func New(logger *slog.Logger) *Resolver {
	return &Resolver{
		src:    dice.CryptoSource{},
		logger: logger,
	}
}

// WithSource replaces the dice source. Tests use a scripted source.
// Returns the Resolver for method chaining.
func (r *Resolver) WithSource(src dice.Source) *Resolver {
	r.src = src
	return r
}

// RollOutcome is the resolved result of a single roll request, with the
// request's descriptive fields echoed through for narration.
type RollOutcome struct {
	Request events.RollRequest `json:"request"`

	// Rolls holds the raw d20 faces: two entries when advantage or
	// disadvantage duplication was applied, for transparency.
	Rolls    []int `json:"rolls"`
	Kept     int   `json:"kept"`
	Modifier int   `json:"modifier"`
	Total    int   `json:"total"`

	// DC is the effective target. For npc_attack this is the player's
	// live armor class, never the model-suggested value.
	DC        int  `json:"dc,omitempty"`
	HasTarget bool `json:"has_target"`
	Success   bool `json:"success"`

	AdvantageApplied    bool `json:"advantage_applied,omitempty"`
	DisadvantageApplied bool `json:"disadvantage_applied,omitempty"`
	IsCritical          bool `json:"is_critical,omitempty"`
	IsCritFail          bool `json:"is_crit_fail,omitempty"`

	// Damage roll fields.
	IsDamage bool   `json:"is_damage,omitempty"`
	Notation string `json:"notation,omitempty"`

	Description string `json:"description"`
}

var titleCaser = cases.Title(language.English)

// Resolve executes every roll in the batch in order. Malformed damage
// notation drops only that roll; unknown skills degrade to a flat d20.
// The returned slice preserves request order.
func (r *Resolver) Resolve(reqs []events.RollRequest, sheet *actor.CharacterSheet) []RollOutcome {
	outcomes := make([]RollOutcome, 0, len(reqs))
	for _, req := range reqs {
		switch req.Type {
		case events.RollDamage:
			o, ok := r.resolveDamage(req)
			if ok {
				outcomes = append(outcomes, o)
			}
		case events.RollNPCAttack, events.RollNPCSave:
			outcomes = append(outcomes, r.resolveNPC(req, sheet))
		default:
			outcomes = append(outcomes, r.resolvePlayer(req, sheet))
		}
	}
	return outcomes
}

func (r *Resolver) resolveDamage(req events.RollRequest) (RollOutcome, bool) {
	n, err := dice.ParseNotation(req.Notation)
	if err != nil {
		// Drop this roll; siblings in the batch still resolve.
		r.logger.Warn("Dropping damage roll with malformed notation",
			"notation", req.Notation,
			"description", req.Description,
			"error", err)
		return RollOutcome{}, false
	}

	rolls := make([]int, n.Count)
	total := n.Modifier
	for i := range rolls {
		rolls[i] = r.src.Die(n.Sides)
		total += rolls[i]
	}
	if total < 0 {
		total = 0
	}

	return RollOutcome{
		Request:     req,
		Rolls:       rolls,
		Modifier:    n.Modifier,
		Total:       total,
		IsDamage:    true,
		Notation:    req.Notation,
		Description: r.describe(req, "damage"),
	}, true
}

func (r *Resolver) resolveNPC(req events.RollRequest, sheet *actor.CharacterSheet) RollOutcome {
	modifier := 0
	if req.Modifier != nil {
		modifier = *req.Modifier
	} else {
		// Unspecified NPC competence is a small random bonus in [2,4],
		// deliberately opaque so the model cannot assume it.
		modifier = r.src.Die(3) + 1
	}

	// The system, not the model, is the authority on the player's armor
	// class. A model-suggested dc on an npc_attack is ignored.
	dc := req.DC
	if req.Type == events.RollNPCAttack {
		dc = sheet.AC()
	}

	o := r.rollD20(req, modifier)
	o.DC = dc
	o.HasTarget = true
	o.Success = o.Total >= dc
	o.Description = r.describe(req, "roll")
	return o
}

func (r *Resolver) resolvePlayer(req events.RollRequest, sheet *actor.CharacterSheet) RollOutcome {
	skill := req.Skill
	if skill == "" {
		skill = req.Ability
	}
	if skill == "" && req.Type == events.RollAttack {
		skill = "attack"
	}

	modifier := 0
	if skill != "" {
		mod, err := rules.SkillModifier(sheet, skill)
		if err != nil {
			r.logger.Warn("Unknown skill in roll request, using flat d20",
				"skill", skill,
				"type", req.Type)
		} else {
			modifier = mod
		}
	}

	o := r.rollD20(req, modifier)
	o.DC = req.DC
	o.HasTarget = true
	o.Success = o.Total >= o.DC
	o.Description = r.describe(req, "check")
	return o
}

// rollD20 rolls a d20 with advantage/disadvantage duplication. When both
// flags are set, advantage wins.
func (r *Resolver) rollD20(req events.RollRequest, modifier int) RollOutcome {
	o := RollOutcome{
		Request:  req,
		Modifier: modifier,
	}

	first := r.src.Die(20)
	switch {
	case req.Advantage:
		second := r.src.Die(20)
		o.Rolls = []int{first, second}
		o.Kept = max(first, second)
		o.AdvantageApplied = true
	case req.Disadvantage:
		second := r.src.Die(20)
		o.Rolls = []int{first, second}
		o.Kept = min(first, second)
		o.DisadvantageApplied = true
	default:
		o.Rolls = []int{first}
		o.Kept = first
	}

	o.Total = o.Kept + modifier
	o.IsCritical = o.Kept == 20
	o.IsCritFail = o.Kept == 1
	return o
}

// describe builds a narration-facing description when the request did not
// carry one.
func (r *Resolver) describe(req events.RollRequest, fallback string) string {
	if req.Description != "" {
		return req.Description
	}

	switch req.Type {
	case events.RollDamage:
		return "Damage roll"
	case events.RollNPCAttack:
		if req.Attacker != "" {
			return titleCaser.String(req.Attacker) + " attack"
		}
		return "Enemy attack"
	case events.RollNPCSave:
		if req.Attacker != "" {
			return titleCaser.String(req.Attacker) + " saving throw"
		}
		return "Enemy saving throw"
	case events.RollSavingThrow:
		if req.Skill != "" || req.Ability != "" {
			name := req.Skill
			if name == "" {
				name = req.Ability
			}
			return titleCaser.String(name) + " saving throw"
		}
		return "Saving throw"
	case events.RollAttack:
		return "Attack roll"
	default:
		if req.Skill != "" {
			return titleCaser.String(req.Skill) + " check"
		}
		return titleCaser.String(fallback)
	}
}

// outcomeWord is the result label used in the authoritative summary:
// HIT/MISS for attacks, SUCCESS/FAILURE for everything with a DC.
func (o *RollOutcome) outcomeWord() string {
	attack := o.Request.Type == events.RollAttack || o.Request.Type == events.RollNPCAttack
	switch {
	case attack && o.Success:
		return "HIT"
	case attack:
		return "MISS"
	case o.Success:
		return "SUCCESS"
	default:
		return "FAILURE"
	}
}

// Summary renders the bracketed roll-result tag consumed by the prompt
// layer. The exact shape is a wire contract; do not restyle it.
func (o *RollOutcome) Summary() string {
	if o.IsDamage {
		return fmt.Sprintf("[ROLL RESULT: %s, %s, total damage: %d]", o.Description, o.Notation, o.Total)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[ROLL RESULT: %s, vs DC %d, rolled %d", o.Description, o.DC, o.Total)
	if o.IsCritical {
		sb.WriteString(" (natural 20)")
	} else if o.IsCritFail {
		sb.WriteString(" (natural 1)")
	}
	fmt.Fprintf(&sb, " — %s]", o.outcomeWord())
	return sb.String()
}

// TranscriptLine renders the short human-readable line shown in the UI
// transcript for one resolved roll.
func (o *RollOutcome) TranscriptLine() string {
	if o.IsDamage {
		return fmt.Sprintf("%s (%s): %v%+d = %d damage", o.Description, o.Notation, o.Rolls, o.Modifier, o.Total)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (DC %d): d20 %v", o.Description, o.DC, o.Rolls)
	if o.AdvantageApplied {
		fmt.Fprintf(&sb, " kept %d (advantage)", o.Kept)
	} else if o.DisadvantageApplied {
		fmt.Fprintf(&sb, " kept %d (disadvantage)", o.Kept)
	}
	fmt.Fprintf(&sb, "%+d = %d", o.Modifier, o.Total)
	if o.IsCritical {
		sb.WriteString(", natural 20!")
	} else if o.IsCritFail {
		sb.WriteString(", natural 1")
	}
	fmt.Fprintf(&sb, " — %s", strings.ToLower(o.outcomeWord()))
	return sb.String()
}
