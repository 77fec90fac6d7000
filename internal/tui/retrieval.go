// Package tui renders coefficient retrieval progress as a terminal
// progress bar.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EhsanBagheri/LibreCAL/caldevice"
)

var descStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

type percentMsg int

type doneMsg caldevice.RetrievalResult

// retrievalModel tracks one retrieval attempt.
type retrievalModel struct {
	bar      progress.Model
	percent  int
	result   *caldevice.RetrievalResult
	progress <-chan int
	done     <-chan caldevice.RetrievalResult
}

func newRetrievalModel(progressCh <-chan int, doneCh <-chan caldevice.RetrievalResult) retrievalModel {
	return retrievalModel{
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
		progress: progressCh,
		done:     doneCh,
	}
}

func (m retrievalModel) waitEvent() tea.Msg {
	select {
	case p := <-m.progress:
		return percentMsg(p)
	case r := <-m.done:
		return doneMsg(r)
	}
}

func (m retrievalModel) Init() tea.Cmd {
	return m.waitEvent
}

func (m retrievalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case percentMsg:
		m.percent = int(msg)
		return m, m.waitEvent
	case doneMsg:
		r := caldevice.RetrievalResult(msg)
		m.result = &r
		if !r.Aborted {
			m.percent = 100
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// the transfer itself runs to completion; we only
			// stop watching it
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m retrievalModel) View() string {
	return descStyle.Render("downloading coefficient sets") + "\n" +
		m.bar.ViewAs(float64(m.percent)/100) + "\n"
}

// RunRetrieval starts a coefficient retrieval on dev and renders its
// progress until the done event fires. The retrieval outcome is
// returned; an aborted retrieval is reported as an error.
func RunRetrieval(dev *caldevice.Device) (caldevice.RetrievalResult, error) {
	if err := dev.UpdateCoefficientSets(); err != nil {
		return caldevice.RetrievalResult{}, err
	}

	model := newRetrievalModel(dev.Progress(), dev.Done())
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return caldevice.RetrievalResult{}, fmt.Errorf("progress ui: %w", err)
	}

	m, ok := final.(retrievalModel)
	if !ok || m.result == nil {
		// viewer dismissed early; wait for the outcome directly
		r := <-dev.Done()
		return r, nil
	}
	if m.result.Aborted {
		return *m.result, fmt.Errorf("device did not report a factory coefficient set")
	}
	return *m.result, nil
}
