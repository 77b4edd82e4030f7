package resolver

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/events"
)

// scriptedDice feeds a fixed sequence of faces, repeating the last value
// once exhausted.
type scriptedDice struct {
	faces []int
	i     int
}

func (s *scriptedDice) Die(sides int) int {
	if s.i >= len(s.faces) {
		return s.faces[len(s.faces)-1]
	}
	v := s.faces[s.i]
	s.i++
	return v
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSheet(t *testing.T) *actor.CharacterSheet {
	t.Helper()
	sheet, err := actor.NewCharacterSheet(&actor.SheetSpec{
		ID:    "fighter",
		Name:  "Korga",
		Level: 3,
		Stats: actor.Stats5e{
			Strength:     16,
			Dexterity:    12,
			Constitution: 14,
			Intelligence: 10,
			Wisdom:       13,
			Charisma:     8,
		},
		HP:            28,
		MaxHP:         28,
		AC:            16,
		Proficiencies: []string{"athletics"},
	})
	require.NoError(t, err)
	return sheet
}

func newResolver(faces ...int) *Resolver {
	return New(testLogger()).WithSource(&scriptedDice{faces: faces})
}

func TestResolve_SkillCheck(t *testing.T) {
	r := newResolver(14)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "athletics", DC: 15},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	o := outcomes[0]
	// str +3, proficiency +2 at level 3
	assert.Equal(t, 5, o.Modifier)
	assert.Equal(t, 19, o.Total)
	assert.Equal(t, 15, o.DC)
	assert.True(t, o.Success)
	assert.Equal(t, "Athletics check", o.Description)
}

func TestResolve_UnknownSkillFallsBackToFlatD20(t *testing.T) {
	r := newResolver(11)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "underwater basket weaving", DC: 10},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	assert.Equal(t, 0, outcomes[0].Modifier)
	assert.Equal(t, 11, outcomes[0].Total)
	assert.True(t, outcomes[0].Success)
}

func TestResolve_AttackSpecialCase(t *testing.T) {
	r := newResolver(10)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollAttack, DC: 13},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	// max(str +3, dex +1) + proficiency +2
	assert.Equal(t, 5, outcomes[0].Modifier)
	assert.Equal(t, "HIT", outcomes[0].outcomeWord())
}

func TestResolve_Advantage(t *testing.T) {
	r := newResolver(5, 17)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "stealth", DC: 10, Advantage: true},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.Equal(t, []int{5, 17}, o.Rolls)
	assert.Equal(t, 17, o.Kept)
	assert.True(t, o.AdvantageApplied)
	assert.False(t, o.DisadvantageApplied)
}

func TestResolve_Disadvantage(t *testing.T) {
	r := newResolver(5, 17)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "stealth", DC: 10, Disadvantage: true},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.Equal(t, []int{5, 17}, o.Rolls)
	assert.Equal(t, 5, o.Kept)
	assert.True(t, o.DisadvantageApplied)
}

// Both flags set resolves through the advantage branch. This tie-break is
// current behavior, preserved for compatibility; it is asserted here so a
// change shows up as a test failure rather than a silent rules drift.
func TestResolve_AdvantageAndDisadvantageBothSet(t *testing.T) {
	r := newResolver(5, 17)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "stealth", DC: 10, Advantage: true, Disadvantage: true},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	assert.Equal(t, 17, outcomes[0].Kept, "advantage branch wins when both flags are set")
	assert.True(t, outcomes[0].AdvantageApplied)
	assert.False(t, outcomes[0].DisadvantageApplied)
}

// An npc_attack is evaluated against the player's live armor class, not
// the model-suggested dc.
func TestResolve_NPCAttackUsesLiveAC(t *testing.T) {
	mod := 2
	r := newResolver(13)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollNPCAttack, Attacker: "goblin", DC: 5, Modifier: &mod},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.Equal(t, 16, o.DC, "target must be the sheet's AC, not the request dc")
	assert.Equal(t, 15, o.Total)
	assert.False(t, o.Success, "13+2 misses AC 16 even though it beats dc 5")
	assert.Equal(t, "MISS", o.outcomeWord())
}

func TestResolve_NPCSaveUsesRequestDC(t *testing.T) {
	mod := 3
	r := newResolver(10)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollNPCSave, Attacker: "ogre", DC: 12, Modifier: &mod},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	assert.Equal(t, 12, outcomes[0].DC)
	assert.True(t, outcomes[0].Success)
}

// An NPC roll without an explicit modifier gets a random one in [2,4].
func TestResolve_NPCRandomModifierRange(t *testing.T) {
	sheet := testSheet(t)
	r := New(testLogger())
	for i := 0; i < 50; i++ {
		outcomes := r.Resolve([]events.RollRequest{
			{Type: events.RollNPCSave, DC: 10},
		}, sheet)
		require.Len(t, outcomes, 1)
		m := outcomes[0].Modifier
		assert.GreaterOrEqual(t, m, 2)
		assert.LessOrEqual(t, m, 4)
	}
}

func TestResolve_DamageRoll(t *testing.T) {
	r := newResolver(6, 3)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollDamage, Notation: "2d8+3", Description: "longsword damage"},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.True(t, o.IsDamage)
	assert.Equal(t, []int{6, 3}, o.Rolls)
	assert.Equal(t, 12, o.Total)
	assert.Equal(t, "[ROLL RESULT: longsword damage, 2d8+3, total damage: 12]", o.Summary())
}

// A malformed notation drops only that roll; siblings still resolve.
func TestResolve_MalformedNotationDropsOnlyThatRoll(t *testing.T) {
	r := newResolver(12, 4)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "perception", DC: 10},
		{Type: events.RollDamage, Notation: "garbage"},
		{Type: events.RollDamage, Notation: "1d6+1"},
	}, testSheet(t))

	require.Len(t, outcomes, 2)
	assert.Equal(t, "perception", outcomes[0].Request.Skill)
	assert.Equal(t, "1d6+1", outcomes[1].Notation)
	assert.Equal(t, 5, outcomes[1].Total)
}

func TestResolve_CriticalTags(t *testing.T) {
	r := newResolver(20)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollAttack, DC: 30},
	}, testSheet(t))
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].IsCritical)
	assert.Contains(t, outcomes[0].Summary(), "(natural 20)")

	r = newResolver(1)
	outcomes = r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "stealth", DC: 2},
	}, testSheet(t))
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].IsCritFail)
	assert.Contains(t, outcomes[0].TranscriptLine(), "natural 1")
}

func TestSummary_CheckFormat(t *testing.T) {
	r := newResolver(14)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "athletics", DC: 15, Description: "climb the cliff"},
	}, testSheet(t))

	require.Len(t, outcomes, 1)
	assert.Equal(t, "[ROLL RESULT: climb the cliff, vs DC 15, rolled 19 — SUCCESS]", outcomes[0].Summary())
}

func TestResolve_OrderPreserved(t *testing.T) {
	r := newResolver(10, 11, 12)
	outcomes := r.Resolve([]events.RollRequest{
		{Type: events.RollSkillCheck, Skill: "perception", DC: 10},
		{Type: events.RollSkillCheck, Skill: "stealth", DC: 10},
		{Type: events.RollSkillCheck, Skill: "insight", DC: 10},
	}, testSheet(t))

	require.Len(t, outcomes, 3)
	assert.Equal(t, "perception", outcomes[0].Request.Skill)
	assert.Equal(t, "stealth", outcomes[1].Request.Skill)
	assert.Equal(t, "insight", outcomes[2].Request.Skill)
}
