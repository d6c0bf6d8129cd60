// Package tui is the terminal front door to the Santa line: the knock
// screen, Twinkle's consent flow, and the chat itself.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sleighworks/santaline/internal/audio"
	"github.com/sleighworks/santaline/internal/client"
	"github.com/sleighworks/santaline/internal/consent"
	"github.com/sleighworks/santaline/internal/conversation"
	"github.com/sleighworks/santaline/internal/document"
	"github.com/sleighworks/santaline/internal/localstate"
	"github.com/sleighworks/santaline/internal/model/chat"
	"github.com/sleighworks/santaline/internal/model/persona"
	"github.com/sleighworks/santaline/internal/service/speech"
	"github.com/sleighworks/santaline/internal/wishlist"
)

// State represents the current screen of the TUI
type State int

const (
	StateLanding State = iota
	StateConsent       // Twinkle's gate: voice attempt, then checkbox fallback
	StateChat
)

// Field indexes for the consent form
const (
	fieldEmail = iota
	fieldName
	fieldAge
	fieldCount
)

// Styles for the TUI
type Styles struct {
	Title   lipgloss.Style
	Santa   lipgloss.Style
	Elf     lipgloss.Style
	Kid     lipgloss.Style
	Dim     lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Accent  lipgloss.Style
}

func NewStyles() *Styles {
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),  // Red
		Santa:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),             // Red
		Elf:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),            // Green
		Kid:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),            // Blue
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),             // Gray
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),             // Red
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),            // Green
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true), // Magenta
	}
}

// Deps carries everything the model needs from main.
type Deps struct {
	Gate    *consent.Gate
	State   *localstate.Store
	API     *client.Client
	Audio   *audio.Session
	Persona persona.Persona
}

// Messages for async operations
type replyDoneMsg struct {
	reply string
	err   error
}

type speakDoneMsg struct {
	err error
}

type knockDoneMsg struct{}

// Model is the bubbletea model for the santa line.
type Model struct {
	styles  *Styles
	spinner spinner.Model

	state   State
	gate    *consent.Gate
	store   *localstate.Store
	api     *client.Client
	sound   *audio.Session
	persona persona.Persona

	inputs [fieldCount]textinput.Model
	focus  int

	chatInput textinput.Model
	session   *conversation.Session
	thinking  bool
	musicOff  bool
	notice    string
	errLine   string

	width  int
	height int
}

// NewModel wires the consent gate, the relay client, and the audio
// session into a fresh landing screen.
func NewModel(deps Deps) Model {
	email := textinput.New()
	email.Placeholder = "parent@example.com"
	email.CharLimit = 80
	email.Width = 40
	email.Focus()

	name := textinput.New()
	name.Placeholder = "Sophie"
	name.CharLimit = 20
	name.Width = 40

	age := textinput.New()
	age.Placeholder = "10"
	age.CharLimit = 3
	age.Width = 40

	chatInput := textinput.New()
	chatInput.Placeholder = "Tell Santa what you wish for..."
	chatInput.CharLimit = 280
	chatInput.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Millisecond * 100,
	}

	return Model{
		styles:    NewStyles(),
		spinner:   s,
		state:     StateLanding,
		gate:      deps.Gate,
		store:     deps.State,
		api:       deps.API,
		sound:     deps.Audio,
		persona:   deps.Persona,
		inputs:    [fieldCount]textinput.Model{email, name, age},
		chatInput: chatInput,
		width:     100,
		height:    30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.sound.Close()
			return m, tea.Quit
		}
		switch m.state {
		case StateLanding:
			return m.updateLanding(msg)
		case StateConsent:
			return m.updateConsent(msg)
		case StateChat:
			return m.updateChat(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case knockDoneMsg:
		if !m.musicOff {
			m.sound.StartMusic()
		}
		return m, nil

	case replyDoneMsg:
		m.thinking = false
		m.chatInput.Focus()
		return m, textinput.Blink

	case speakDoneMsg:
		if msg.err != nil {
			m.notice = "Santa's voice is resting right now."
		}
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		return m, nil
	}

	m.gate.Enter()
	if m.gate.Granted() {
		// Persisted consent skips the gate entirely.
		m.state = StateConsent
		m.notice = "Consent locked in. Santa is all ears, jingle and ready."
	} else {
		m.state = StateConsent
		m.notice = "Knock knock. Elf here. I handle consent with maximum sparkle."
	}
	m.inputs[fieldEmail].Focus()
	m.focus = fieldEmail

	sound := m.sound
	return m, tea.Batch(textinput.Blink, func() tea.Msg {
		sound.PlayKnock()
		return knockDoneMsg{}
	})
}

func (m Model) updateConsent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % fieldCount
		m.focusField()
		return m, textinput.Blink

	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		m.focusField()
		return m, textinput.Blink

	case "ctrl+v":
		// Voice consent attempt. With no recognizer on this platform the
		// gate drops straight to the checkbox fallback.
		stage := m.gate.StartListening(context.Background())
		switch stage {
		case consent.StageDone:
			m.notice = "Yippee. Consent captured. Opening the Santa line."
		case consent.StageFallback:
			m.notice = "Voice is not supported here. Please tick consent below."
		default:
			m.notice = "Listening. Say I consent."
		}
		return m, nil

	case "ctrl+x":
		if m.gate.Granted() {
			return m, nil
		}
		if err := m.gate.ConfirmManually(); err != nil {
			m.errLine = "Try voice consent first. The checkbox unlocks if voice fails."
			return m, nil
		}
		m.errLine = ""
		m.notice = "Yippee. Consent captured. Opening the Santa line."
		return m, nil

	case "enter":
		return m.startChat()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusField() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m Model) startChat() (tea.Model, tea.Cmd) {
	kidName := strings.TrimSpace(m.inputs[fieldName].Value())
	parentEmail := strings.TrimSpace(m.inputs[fieldEmail].Value())
	age := strings.TrimSpace(m.inputs[fieldAge].Value())

	if err := consent.ValidateKidName(kidName); err != nil {
		m.errLine = "Please enter a first name up to 20 letters."
		return m, nil
	}
	if parentEmail == "" {
		m.errLine = "Parent email and consent are required."
		return m, nil
	}
	if !m.gate.Granted() {
		m.errLine = "Parent email and consent are required."
		return m, nil
	}

	if m.store != nil {
		_ = m.store.SetConsentGranted(true)
	}

	m.session = conversation.NewSession(m.api, m.persona.SystemPrompt, kidName, age, true)
	m.session.AddSanta(m.persona.Greet(kidName))
	m.session.AddSanta("Tell me your wishlist. Toys or games. Books or art. Clothes or sports. Or a fun experience.")

	m.state = StateChat
	m.errLine = ""
	m.notice = ""
	m.chatInput.Focus()
	return m, textinput.Blink
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.thinking {
			return m, nil
		}
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" {
			return m, nil
		}
		m.chatInput.Reset()
		m.thinking = true
		m.notice = ""

		session := m.session
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			reply, err := session.SubmitChildText(ctx, text)
			return replyDoneMsg{reply: reply, err: err}
		})

	case "ctrl+l":
		if m.session.Wishlist().Empty() {
			m.notice = "The wishlist is empty. Tell Santa a wish first."
			return m, nil
		}
		path, err := document.SaveLetter(m.session.KidName(), m.session.Age(), m.session.Wishlist().Snapshot())
		if err != nil {
			m.notice = "Could not save the letter."
			return m, nil
		}
		if m.store != nil {
			_ = m.store.SaveWishlist(m.session.Wishlist().Snapshot())
		}
		m.notice = "Saved " + path
		return m, nil

	case "ctrl+n":
		path, err := document.SaveCertificate(m.session.KidName())
		if err != nil {
			m.notice = "Could not save the certificate."
			return m, nil
		}
		m.notice = "Saved " + path
		return m, nil

	case "ctrl+t":
		if m.musicOff {
			m.musicOff = false
			m.sound.StartMusic()
			m.notice = "Music on."
		} else {
			m.musicOff = true
			m.sound.StopMusic()
			m.notice = "Music off."
		}
		return m, nil

	case "ctrl+s":
		return m.speakLastReply()
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// speakLastReply fetches speech for the most recent Santa line and
// plays it. Failures show a soft notice, never an error screen.
func (m Model) speakLastReply() (tea.Model, tea.Cmd) {
	messages := m.session.Messages()
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleSanta {
			last = messages[i].Text
			break
		}
	}
	if last == "" {
		return m, nil
	}

	api, sound := m.api, m.sound
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		clip, err := api.Synthesize(ctx, last, speech.VoiceRoleSanta)
		if err != nil {
			return speakDoneMsg{err: err}
		}
		return speakDoneMsg{err: sound.PlayClip(clip)}
	}
}

func (m Model) View() string {
	switch m.state {
	case StateLanding:
		return m.viewLanding()
	case StateConsent:
		return m.viewConsent()
	default:
		return m.viewChat()
	}
}

func (m Model) viewLanding() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render("  Santa Chat") + "\n")
	b.WriteString(m.styles.Dim.Render("  Kid safe chat with elf consent, wishlist, and keepsake PDFs") + "\n\n")
	b.WriteString(m.styles.Accent.Render("  [Enter] Knock Knock") + "\n")
	b.WriteString(m.styles.Dim.Render("  Press Enter to enter the workshop. This enables sound.") + "\n")
	return b.String()
}

func (m Model) viewConsent() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.Elf.Render("  Elf: Hello. I am Twinkle the Consent Elf. I am tiny but mighty in paperwork.") + "\n\n")
	b.WriteString("  Parent, we do not collect addresses, last names, phone numbers,\n")
	b.WriteString("  school names, or exact locations. To continue, please say out loud:\n")
	b.WriteString("  " + m.styles.Accent.Render("I consent") + ". Then I open the line to Santa.\n\n")

	labels := [fieldCount]string{"Parent email", "Child first name", "Age (optional)"}
	for i := range m.inputs {
		cursor := "  "
		if i == m.focus {
			cursor = m.styles.Accent.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%-18s %s\n", cursor, labels[i], m.inputs[i].View()))
	}
	b.WriteString("\n")

	check := "[ ]"
	if m.gate.Granted() {
		check = m.styles.Success.Render("[x]")
	}
	switch m.gate.Stage() {
	case consent.StageFallback:
		b.WriteString(fmt.Sprintf("  %s I am the parent or guardian. I consent.  %s\n",
			check, m.styles.Dim.Render("(ctrl+x to tick)")))
	case consent.StageDone:
		b.WriteString(fmt.Sprintf("  %s I am the parent or guardian. I consent.\n", check))
	}

	if m.notice != "" {
		b.WriteString("\n  " + m.styles.Elf.Render("Elf: "+m.notice) + "\n")
	}
	if m.errLine != "" {
		b.WriteString("\n  " + m.styles.Error.Render(m.errLine) + "\n")
	}

	b.WriteString("\n" + m.styles.Dim.Render("  tab: next field · ctrl+v: voice consent · enter: chat with Santa · ctrl+c: quit") + "\n")
	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder
	b.WriteString("\n")

	for _, msg := range m.session.Messages() {
		switch msg.Role {
		case chat.RoleSanta:
			b.WriteString(m.styles.Santa.Render("  Santa: ") + msg.Text + "\n")
		case chat.RoleElf:
			b.WriteString(m.styles.Elf.Render("  Elf: ") + msg.Text + "\n")
		default:
			b.WriteString(m.styles.Kid.Render("  You: ") + msg.Text + "\n")
		}
	}
	if m.thinking {
		b.WriteString(m.styles.Dim.Render("  "+m.spinner.View()+" Checking my list twice...") + "\n")
	}

	b.WriteString("\n  " + m.chatInput.View() + "\n")
	b.WriteString(m.viewWishlist())

	if m.notice != "" {
		b.WriteString("\n  " + m.styles.Dim.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.styles.Dim.Render("  enter: send · ctrl+l: letter pdf · ctrl+n: nice list · ctrl+s: hear Santa · ctrl+t: music · ctrl+c: quit") + "\n")
	return b.String()
}

func (m Model) viewWishlist() string {
	var b strings.Builder
	b.WriteString("\n" + m.styles.Title.Render("  Wishlist") + "\n")
	snapshot := m.session.Wishlist().Snapshot()
	for _, category := range wishlist.Categories() {
		entries := snapshot[category]
		if len(entries) == 0 {
			b.WriteString(fmt.Sprintf("  %-12s %s\n", category, m.styles.Dim.Render("Empty")))
			continue
		}
		b.WriteString(fmt.Sprintf("  %-12s %s\n", category, strings.Join(entries, ", ")))
	}
	return b.String()
}
