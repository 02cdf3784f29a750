// pattern: Imperative Shell

package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"projmux/internal/logging"
)

// ErrNoTerminal is returned when the picker cannot take over a terminal.
var ErrNoTerminal = errors.New("picker needs an interactive terminal")

// Picker presents candidates in a full-screen fuzzy prompt.
type Picker struct {
	styles *Styles
	query  string
	input  *os.File
	output io.Writer
	logger *logging.ScopedLogger
}

// Option configures a Picker.
type Option func(*Picker)

// WithQuery pre-fills the prompt.
func WithQuery(query string) Option {
	return func(p *Picker) { p.query = query }
}

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *logging.ScopedLogger) Option {
	return func(p *Picker) { p.logger = logger }
}

// New creates a Picker drawing on stderr in the given catppuccin flavor.
func New(theme string, opts ...Option) *Picker {
	p := &Picker{
		styles: NewStyles(theme),
		input:  os.Stdin,
		output: os.Stderr,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pick shows candidates and blocks until the user accepts or aborts.
// It returns nil when the user aborted; otherwise a single element holding
// the chosen candidate or the raw query.
func (p *Picker) Pick(ctx context.Context, candidates []string) ([]string, error) {
	if !term.IsTerminal(int(p.input.Fd())) {
		return nil, ErrNoTerminal
	}

	p.logger.Debug("starting picker", "candidates", len(candidates))
	model := NewModel(candidates, p.query, p.styles, p.logger)
	prog := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(p.input),
		tea.WithOutput(p.output),
	)

	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}

	result, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected picker model %T", final)
	}
	return result.Selection(), nil
}
