package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// CodeEditor is a multi-line editor for coding answers.
type CodeEditor struct {
	Model textarea.Model
}

// NewCodeEditor creates a focused editor pre-filled with starter code.
func NewCodeEditor(starter string, width, height int) CodeEditor {
	ta := textarea.New()
	ta.Placeholder = "Write your solution..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.SetValue(starter)
	return CodeEditor{Model: ta}
}

// Focus focuses the editor.
func (e *CodeEditor) Focus() tea.Cmd {
	return e.Model.Focus()
}

// Update handles messages.
func (e CodeEditor) Update(msg tea.Msg) (CodeEditor, tea.Cmd) {
	var cmd tea.Cmd
	e.Model, cmd = e.Model.Update(msg)
	return e, cmd
}

// View renders the editor.
func (e CodeEditor) View() string {
	return e.Model.View()
}

// Value returns the code typed so far.
func (e CodeEditor) Value() string {
	return e.Model.Value()
}
