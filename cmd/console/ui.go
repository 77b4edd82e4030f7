package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/dm-engine/internal/session"
	"github.com/jwebster45206/dm-engine/internal/storage"
	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

const (
	AgentName       = "DM"
	PlaceHolderText = "What do you do?"
)

// entryKind classifies transcript entries so the log can be restyled
// and rewrapped on resize.
type entryKind int

const (
	entryPlayer entryKind = iota
	entryNarration
	entryRoll
	entryNotice
	entryError
)

type transcriptEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	processor     *session.Processor
	store         storage.Storage
	gameState     *state.GameState
	transcript    []transcriptEntry
	lastNarration string
	chatViewport  viewport.Model
	metaViewport  viewport.Model
	textarea      textarea.Model
	ready         bool
	width         int
	height        int
	err           error
	loading       bool

	// Sheet selection state
	showSheetModal bool
	sheets         []*actor.SheetSpec
	selectedSheet  int
	loadingSheets  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	diceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")) // gold

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(proc *session.Processor, store storage.Storage) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		processor:      proc,
		store:          store,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		ready:          false,
		showSheetModal: true,
		loadingSheets:  true,
		selectedSheet:  0,
	}
}

// writeChatContent rebuilds the chat viewport from the transcript for
// the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("DM ENGINE") + "\n\n")
	content.WriteString("Describe your actions below. The dice are rolled for you.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, e := range m.transcript {
		switch e.kind {
		case entryPlayer:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-6) + "\n\n")
		case entryNarration:
			prefix := AgentName + ": "
			wrapped := wordwrap.String(e.text, chatWidth-len(prefix))
			content.WriteString(narratorStyle.Render(prefix) + wrapped + "\n\n")
		case entryRoll:
			content.WriteString(diceStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryNotice:
			content.WriteString(noticeStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+e.text) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CHARACTER") + "\n\n")

	if gs.Sheet != nil {
		spec := gs.Sheet.Spec
		content.WriteString(spec.Name + "\n")
		if spec.Class != "" {
			content.WriteString(fmt.Sprintf("Level %d %s\n", spec.Level, spec.Class))
		}
		content.WriteString(fmt.Sprintf("HP: %d/%d\n", gs.Sheet.HP(), gs.Sheet.MaxHP()))
		content.WriteString(fmt.Sprintf("AC: %d\n\n", gs.Sheet.AC()))
	}

	content.WriteString(fmt.Sprintf("Gold: %d  Silver: %d\n", gs.Gold, gs.Silver))
	if gs.Location != "" {
		content.WriteString("Location:\n" + gs.Location + "\n")
	}
	content.WriteString("\n")

	if len(gs.Conditions) > 0 {
		content.WriteString("Conditions:\n")
		for _, c := range gs.Conditions {
			content.WriteString("• " + c + "\n")
		}
		content.WriteString("\n")
	}

	hasOpenQuests := false
	for _, q := range gs.Quests {
		if !q.Completed {
			hasOpenQuests = true
			break
		}
	}
	if hasOpenQuests {
		content.WriteString("Quests:\n")
		for _, q := range gs.Quests {
			if !q.Completed {
				content.WriteString("• " + q.Name + "\n")
			}
		}
		content.WriteString("\n")
	}

	if gs.InCombat {
		content.WriteString(errorStyle.Render("IN COMBAT") + "\n")
		for _, e := range gs.Enemies {
			if e.IsDefeated() {
				content.WriteString(fmt.Sprintf("• %s (down)\n", e.Name))
			} else {
				content.WriteString(fmt.Sprintf("• %s HP %d\n", e.Name, e.HP))
			}
		}
		content.WriteString("\n")
	}

	content.WriteString("Session:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy last\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /rolls: Roll log\n")

	return content.String()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showSheetModal {
		return loadSheets(m.store)
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle sheet modal first
	if m.showSheetModal {
		return m.updateSheetModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to all components; each ignores events
		// outside its bounds.
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeChatContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if m.lastNarration != "" {
				// Clipboard failures are non-fatal; there is nothing
				// useful to show the player.
				_ = clipboard.WriteAll(m.lastNarration)
			}
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.transcript = append(m.transcript, transcriptEntry{entryPlayer, input})
			m.writeChatContent()

			return m, tea.Batch(sendTurn(m.processor, m.store, m.gameState, input), progressTick())
		}

	case turnResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.transcript = append(m.transcript, transcriptEntry{entryError, msg.err.Error()})
		} else {
			m.appendTurn(msg.result)
			if msg.gameState != nil {
				m.gameState = msg.gameState
				m.metaViewport.SetContent(writeMetadata(m.gameState))
			}
		}
		m.writeChatContent()
		return m, nil

	case rollLogMsg:
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptEntry{entryError, msg.err.Error()})
		} else if len(msg.records) == 0 {
			m.transcript = append(m.transcript, transcriptEntry{entryNotice, "No rolls yet."})
		} else {
			for _, rec := range msg.records {
				m.transcript = append(m.transcript, transcriptEntry{entryRoll, formatRollRecord(rec)})
			}
		}
		m.writeChatContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// appendTurn folds a turn result into the transcript. Dice lines land
// after the narration that requested them, before the follow-up.
func (m *ConsoleUI) appendTurn(result *session.TurnResult) {
	if result == nil {
		return
	}

	for i, n := range result.Narratives {
		m.transcript = append(m.transcript, transcriptEntry{entryNarration, n})
		m.lastNarration = n
		if i == 0 {
			for _, line := range result.RollLines {
				m.transcript = append(m.transcript, transcriptEntry{entryRoll, line})
			}
		}
	}
	if len(result.Narratives) == 0 {
		for _, line := range result.RollLines {
			m.transcript = append(m.transcript, transcriptEntry{entryRoll, line})
		}
	}
	for _, notice := range result.Notices {
		m.transcript = append(m.transcript, transcriptEntry{entryNotice, notice})
	}
}

func formatRollRecord(rec state.RollRecord) string {
	if rec.IsDamage {
		return fmt.Sprintf("🎲 %s: %v = %d damage", rec.Description, rec.Rolls, rec.Total)
	}
	outcome := "FAILURE"
	if rec.Success {
		outcome = "SUCCESS"
	}
	return fmt.Sprintf("🎲 %s: %v%+d = %d vs DC %d (%s)", rec.Description, rec.Rolls, rec.Modifier, rec.Total, rec.DC, outcome)
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `Commands:
• /help - Show this help
• /rolls - Show the session roll log
• Ctrl+Y - Copy the last narration
• Ctrl+C - Quit game

How to play:
• Describe your actions and press Enter
• When the story calls for a roll, the dice are rolled here and
  the results shown in gold are final
• Be descriptive for better responses`
		m.transcript = append(m.transcript, transcriptEntry{entryNotice, helpText})
		m.writeChatContent()
		return m, nil

	case "/rolls":
		return m, loadRollLog(m.store, m.gameState)
	}

	return m, nil
}

func (m ConsoleUI) updateSheetModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sheetsLoadedMsg:
		m.loadingSheets = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.sheets = msg.sheets
		}

	case sessionStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.gameState = msg.gameState
			m.showSheetModal = false
			if m.width > 0 && m.height > 0 {
				m.resize()
			}
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.gameState))
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingSheets {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedSheet > 0 {
				m.selectedSheet--
			}
		case tea.KeyDown:
			if m.selectedSheet < len(m.sheets)-1 {
				m.selectedSheet++
			}
		case tea.KeyEnter:
			if len(m.sheets) > 0 {
				m.loading = true
				return m, startSession(m.processor, m.sheets[m.selectedSheet].ID)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showSheetModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to abandon your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSheetModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingSheets {
		content.WriteString(modalTitleStyle.Render("Loading Characters..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching available character sheets..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load characters: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting Session..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your adventure..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Choose Your Character"))
		content.WriteString("\n\n")

		for i, sheet := range m.sheets {
			label := sheet.Name
			if sheet.Class != "" {
				label = fmt.Sprintf("%s (level %d %s)", sheet.Name, sheet.Level, sheet.Class)
			}
			if i == m.selectedSheet {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSheetModal {
		return m.renderSheetModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
