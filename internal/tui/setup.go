// ABOUTME: Interactive TUI wizard for connecting chainjournal to a Solana cluster.
// ABOUTME: 3-step bubbletea model collecting cluster, RPC URL, and keypair path.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/chainjournal/internal/cluster"
	"github.com/2389-research/chainjournal/internal/config"
)

// Step represents the current wizard step.
type Step int

const (
	StepCluster Step = iota
	StepRPCURL
	StepKeypair
	StepValidating
	StepDone
	StepFailed
)

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	err error
}

// ValidateFn is the function signature for connection validation.
type ValidateFn func(ctx context.Context, clusterName, rpcURL, keypairPath string) error

// cancelHolder shares a cancel function across bubbletea model copies.
// It must stay a pointer field on SetupModel so that value-receiver methods
// can store the cancel func and have every copy see it.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	inputs        [3]textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	inputErr      error
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a new setup wizard model, pre-filling with existing config values.
func NewSetupModel(clusterName, rpcURL, keypairPath string) SetupModel {
	clusterInput := textinput.New()
	clusterInput.Placeholder = cluster.Devnet
	clusterInput.Focus()
	clusterInput.Width = 50
	if clusterName != "" {
		clusterInput.SetValue(clusterName)
	}

	rpcInput := textinput.New()
	rpcInput.Placeholder = "cluster default"
	rpcInput.Width = 50
	if rpcURL != "" {
		rpcInput.SetValue(rpcURL)
	}

	keyInput := textinput.New()
	keyInput.Placeholder = config.DefaultKeypairPath
	keyInput.Width = 50
	if keypairPath != "" {
		keyInput.SetValue(keypairPath)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepCluster,
		inputs:     [3]textinput.Model{clusterInput, rpcInput, keyInput},
		spinner:    s,
		validateFn: ValidateConnection,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepCluster, StepRPCURL, StepKeypair:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)
		m.inputErr = nil

		switch m.step {
		case StepCluster:
			val := strings.TrimSpace(m.inputs[0].Value())
			if val == "" {
				val = cluster.Devnet
			}
			m.inputs[0].SetValue(val)
		case StepRPCURL:
			val := strings.TrimRight(strings.TrimSpace(m.inputs[1].Value()), "/")
			m.inputs[1].SetValue(val)
			// Custom clusters need an endpoint; known ones fall back to their default.
			if _, err := cluster.Lookup(m.inputs[0].Value(), val); err != nil {
				m.inputErr = err
				return m, nil
			}
		case StepKeypair:
			if strings.TrimSpace(m.inputs[2].Value()) == "" {
				m.inputs[2].SetValue(config.DefaultKeypairPath)
			}
		}

		m.inputs[idx].Blur()

		switch m.step {
		case StepCluster:
			m.step = StepRPCURL
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepRPCURL:
			m.step = StepKeypair
			m.inputs[2].Focus()
			return m, textinput.Blink
		case StepKeypair:
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	clusterName := m.inputs[0].Value()
	rpcURL := m.inputs[1].Value()
	keypairPath := m.inputs[2].Value()
	fn := m.validateFn
	return func() tea.Msg {
		return validationResultMsg{err: fn(ctx, clusterName, rpcURL, keypairPath)}
	}
}

func (m SetupModel) rpcLabel() string {
	if v := m.inputs[1].Value(); v != "" {
		return v
	}
	return "(cluster default)"
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   CHAINJOURNAL"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Connect to a Solana cluster.\n\n")

	switch m.step {
	case StepCluster:
		b.WriteString(stepStyle.Render("Step 1 of 3: Cluster"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(fmt.Sprintf("(%s, or a custom name; Enter for devnet)", strings.Join(cluster.Names(), ", "))))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepRPCURL:
		b.WriteString(fmt.Sprintf("  Cluster: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 3: RPC URL"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(press Enter for the cluster default)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")
		if m.inputErr != nil {
			b.WriteString(errorStyle.Render(m.inputErr.Error()))
			b.WriteString("\n")
		}

	case StepKeypair:
		b.WriteString(fmt.Sprintf("  Cluster: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  RPC URL: %s\n\n", m.rpcLabel()))
		b.WriteString(stepStyle.Render("Step 3 of 3: Keypair Path"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(press Enter for the Solana CLI default)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[2].View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  Cluster: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  RPC URL: %s\n", m.rpcLabel()))
		b.WriteString(fmt.Sprintf("  Keypair: %s\n\n", m.inputs[2].Value()))
		b.WriteString(m.spinner.View())
		b.WriteString(" Validating connection...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Connected!"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() (clusterName, rpcURL, keypairPath string) {
	return m.inputs[0].Value(), m.inputs[1].Value(), m.inputs[2].Value()
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
