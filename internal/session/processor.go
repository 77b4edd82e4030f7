// Package session drives one player turn end to end: prompt the narrator
// model, parse its response into narrative and events, resolve requested
// rolls with real dice, feed results back to the model, and persist the
// resulting game state. The roll feedback loop is recursive and bounded.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/internal/storage"
	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/chat"
	"github.com/jwebster45206/dm-engine/pkg/parser"
	"github.com/jwebster45206/dm-engine/pkg/prompts"
	"github.com/jwebster45206/dm-engine/pkg/resolver"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// MaxRollDepth caps the number of chained automatic model turns per user
// action. Without it a model that keeps requesting rolls would loop
// indefinitely; this is a correctness bound, not a tuning knob.
const MaxRollDepth = 3

const llmTimeout = 60 * time.Second

// TurnResult is everything the UI needs to render one completed turn.
type TurnResult struct {
	// Narratives holds the model's narrative paragraphs for this turn, in
	// order. A turn with resolved rolls has one entry per model call.
	Narratives []string

	// RollLines are human-readable transcript lines for rolls resolved
	// this turn, in resolution order.
	RollLines []string

	// Notices are informational system notices (e.g. the chain limit).
	Notices []string

	// TextRollDetected marks that at least one roll request was inferred
	// from prose rather than the JSON contract.
	TextRollDetected bool
}

// Processor handles the core turn processing logic.
type Processor struct {
	storage  storage.Storage
	llm      services.LLMService
	resolver *resolver.Resolver
	logger   *slog.Logger
}

// NewProcessor creates a new turn processor.
func NewProcessor(store storage.Storage, llm services.LLMService, logger *slog.Logger) *Processor {
	return &Processor{
		storage:  store,
		llm:      llm,
		resolver: resolver.New(logger),
		logger:   logger,
	}
}

// WithResolver overrides the roll resolver. Returns the Processor for
// method chaining.
func (p *Processor) WithResolver(r *resolver.Resolver) *Processor {
	p.resolver = r
	return p
}

// StartSession creates and persists a fresh game state for the named
// character sheet.
func (p *Processor) StartSession(ctx context.Context, sheetID string) (*state.GameState, error) {
	spec, err := p.storage.GetSheetSpec(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load character sheet: %w", err)
	}

	sheet, err := actor.NewCharacterSheet(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build character: %w", err)
	}

	gs := state.NewGameState(sheet)
	if err := p.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}

	p.logger.Info("Session started",
		"game_state_id", gs.ID.String(),
		"character", spec.Name)
	return gs, nil
}

// ProcessUserTurn runs one player message through the full pipeline and
// persists the updated game state.
func (p *Processor) ProcessUserTurn(ctx context.Context, id uuid.UUID, message string) (*TurnResult, error) {
	gs, err := p.storage.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	if gs == nil {
		return nil, fmt.Errorf("game state not found: %s", id.String())
	}

	response, err := p.callModel(ctx, gs, message, "", false)
	if err != nil {
		return nil, err
	}

	gs.AddMessage(chat.ChatRoleUser, message, false)

	result := &TurnResult{}
	if err := p.handleResponse(ctx, gs, response, 0, result); err != nil {
		return nil, err
	}

	if err := p.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save game state: %w", err)
	}

	return result, nil
}

// callModel builds the prompt from current state and issues one model
// call. For follow-up calls message is empty and rollSummary carries the
// authoritative results.
func (p *Processor) callModel(ctx context.Context, gs *state.GameState, message, rollSummary string, correction bool) (string, error) {
	builder := prompts.New().WithGameState(gs)
	if message != "" {
		builder = builder.WithUserMessage(message, chat.ChatRoleUser)
	}
	if rollSummary != "" {
		builder = builder.WithRollSummary(rollSummary)
		if correction {
			builder = builder.WithOutcomeCorrection()
		}
	}

	messages, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build chat messages: %w", err)
	}

	chatCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	p.logger.Debug("Sending chat request to LLM",
		"game_state_id", gs.ID.String(),
		"message_count", len(messages))
	response, err := p.llm.Chat(chatCtx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM chat failed: %w", err)
	}

	return strings.TrimRight(response.Message, "\n"), nil
}

// handleResponse parses one model response, applies its events, and when
// rolls were requested resolves them and recurses on the follow-up
// response. depth counts completed resolution rounds.
func (p *Processor) handleResponse(ctx context.Context, gs *state.GameState, raw string, depth int, res *TurnResult) error {
	parsed := parser.Parse(raw)

	if parsed.Narrative != "" {
		gs.AddMessage(chat.ChatRoleAgent, parsed.Narrative, false)
		res.Narratives = append(res.Narratives, parsed.Narrative)
	}

	ev := parsed.Events
	if ev == nil {
		return nil
	}
	if ev.TextRollDetected {
		res.TextRollDetected = true
	}

	if err := state.NewEventWorker(gs, ev, p.logger).WithContext(ctx).Apply(); err != nil {
		return fmt.Errorf("failed to apply events: %w", err)
	}

	if len(ev.RequestedRolls) == 0 {
		return nil
	}

	if depth >= MaxRollDepth {
		p.logger.Warn("Roll chain depth limit reached",
			"game_state_id", gs.ID.String(),
			"pending_rolls", len(ev.RequestedRolls))
		gs.AddMessage(chat.ChatRoleSystem, prompts.ChainLimitNotice, false)
		res.Notices = append(res.Notices, prompts.ChainLimitNotice)
		return nil
	}

	// The guard looks at the narrative that accompanied the roll
	// requests: describing results the dice have not produced yet gets a
	// correction clause on the follow-up call.
	preNarrated := parser.DetectPreNarratedOutcome(parsed.Narrative)
	if preNarrated {
		p.logger.Warn("Model pre-narrated a roll outcome",
			"game_state_id", gs.ID.String())
	}

	outcomes := p.resolver.Resolve(ev.RequestedRolls, gs.Sheet)
	if len(outcomes) == 0 {
		// Every request was dropped as malformed; nothing to report.
		return nil
	}

	summaries := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		record := toRollRecord(o)
		gs.AddRoll(record)
		if err := p.storage.AppendRoll(ctx, gs.ID, record); err != nil {
			// The in-state log still has the roll; losing the audit
			// trail entry is not worth failing the turn.
			p.logger.Error("Failed to append roll to audit trail",
				"game_state_id", gs.ID.String(),
				"error", err)
		}
		summaries = append(summaries, o.Summary())
		res.RollLines = append(res.RollLines, o.TranscriptLine())
	}
	summary := strings.Join(summaries, "\n")

	// The hidden summary goes into history before the follow-up call, so
	// the model sees results in context before narrating them.
	gs.AddMessage(chat.ChatRoleSystem, summary, true)

	followUp, err := p.callModel(ctx, gs, "", summary, preNarrated)
	if err != nil {
		return err
	}

	return p.handleResponse(ctx, gs, followUp, depth+1, res)
}

func toRollRecord(o resolver.RollOutcome) state.RollRecord {
	return state.RollRecord{
		Type:        o.Request.Type,
		Description: o.Description,
		Rolls:       o.Rolls,
		Modifier:    o.Modifier,
		Total:       o.Total,
		DC:          o.DC,
		Success:     o.Success,
		IsDamage:    o.IsDamage,
		IsCritical:  o.IsCritical,
		IsCritFail:  o.IsCritFail,
		Timestamp:   time.Now().UTC(),
	}
}
