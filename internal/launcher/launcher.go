// pattern: Imperative Shell

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"

	"projmux/internal/config"
	"projmux/internal/discovery"
	"projmux/internal/label"
	"projmux/internal/logging"
	"projmux/internal/tmux"
)

// Indexer builds the project catalog for a root directory.
type Indexer interface {
	Index(root string) (*discovery.Catalog, error)
}

// SessionManager is the subset of the tmux client the launcher drives.
type SessionManager interface {
	ListSessions(ctx context.Context) ([]tmux.Session, error)
	EnsureSession(ctx context.Context, name, dir string) (bool, error)
	Attach(ctx context.Context, name string) error
}

// Picker asks the user to choose one of the candidates. A nil or empty
// result means the user aborted.
type Picker interface {
	Pick(ctx context.Context, candidates []string) ([]string, error)
}

// Locker serializes session creation between launcher processes.
type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

// Launcher ties discovery, the picker and tmux together.
type Launcher struct {
	indexer    Indexer
	sessions   SessionManager
	picker     Picker
	compressor *label.Compressor
	locker     Locker
	homeDir    func() (string, error)
	logger     *logging.ScopedLogger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLocker guards session creation with l.
func WithLocker(l Locker) Option {
	return func(ln *Launcher) { ln.locker = l }
}

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *logging.ScopedLogger) Option {
	return func(ln *Launcher) { ln.logger = logger }
}

// WithHomeDir overrides how the starting directory for new sessions is found.
func WithHomeDir(fn func() (string, error)) Option {
	return func(ln *Launcher) { ln.homeDir = fn }
}

// New creates a Launcher.
func New(indexer Indexer, sessions SessionManager, picker Picker, compressor *label.Compressor, opts ...Option) *Launcher {
	l := &Launcher{
		indexer:    indexer,
		sessions:   sessions,
		picker:     picker,
		compressor: compressor,
		homeDir:    func() (string, error) { return config.ExpandHome("~") },
		logger:     logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Candidates scans root and merges the live sessions into the selectable lines.
func (l *Launcher) Candidates(ctx context.Context, root string) (*discovery.Catalog, []string, error) {
	catalog, err := l.indexer.Index(root)
	if err != nil {
		if errors.Is(err, discovery.ErrRootNotDir) {
			return nil, nil, &Error{Kind: KindUsage, Key: root, Err: err}
		}
		return nil, nil, &Error{Kind: KindCollaborator, Key: root, Err: err}
	}

	sessions, err := l.sessions.ListSessions(ctx)
	if err != nil {
		return nil, nil, &Error{Kind: KindCollaborator, Err: err}
	}

	lines := discovery.MergeSessions(catalog.Lines(), tmux.Names(sessions))
	l.logger.Debug("candidates ready", "projects", catalog.Len(), "sessions", len(sessions))
	return catalog, lines, nil
}

// List writes the selectable lines for root to w, one per line.
func (l *Launcher) List(ctx context.Context, root string, w io.Writer) error {
	_, lines, err := l.Candidates(ctx, root)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Run scans root, lets the user pick an entry and switches to its session.
func (l *Launcher) Run(ctx context.Context, root string) error {
	catalog, lines, err := l.Candidates(ctx, root)
	if err != nil {
		return err
	}

	picked, err := l.picker.Pick(ctx, lines)
	if err != nil {
		return &Error{Kind: KindCollaborator, Err: err}
	}
	if len(picked) == 0 {
		l.logger.Info("selection aborted")
		return ErrAborted
	}

	target, err := Resolve(catalog, picked[0])
	if err != nil {
		l.logger.Warn("selection not resolved", "line", picked[0], "error", err)
		return err
	}
	l.logger.Info("selection resolved", "kind", target.Kind.String(), "category", target.Category, "name", target.Name, "path", target.Path)

	return l.Act(ctx, target)
}

// Act switches to the session for target, creating it when needed.
func (l *Launcher) Act(ctx context.Context, target Target) error {
	switch target.Kind {
	case TargetSession:
		if err := l.sessions.Attach(ctx, target.Name); err != nil {
			return &Error{Kind: KindCollaborator, Key: target.Name, Err: err}
		}
		return nil
	case TargetCreate:
		dir := target.Path
		if dir == "" {
			home, err := l.homeDir()
			if err != nil {
				return &Error{Kind: KindCollaborator, Key: target.Category, Err: err}
			}
			dir = home
		}
		return l.createOrAttach(ctx, tmux.SessionName(target.Category), dir)
	case TargetProject:
		name := tmux.SessionName(l.compressor.Compress(target.Category, target.Name))
		return l.createOrAttach(ctx, name, target.Path)
	default:
		return &Error{Kind: KindCollaborator, Key: target.Category, Err: fmt.Errorf("unknown target kind %d", target.Kind)}
	}
}

func (l *Launcher) createOrAttach(ctx context.Context, name, dir string) error {
	created, err := l.ensure(ctx, name, dir)
	if err != nil {
		return &Error{Kind: KindCollaborator, Key: name, Err: err}
	}
	l.logger.Debug("session ready", "session", name, "created", created)

	if err := l.sessions.Attach(ctx, name); err != nil {
		return &Error{Kind: KindCollaborator, Key: name, Err: err}
	}
	return nil
}

// ensure holds the lock only around the check-and-create, not the attach,
// which blocks until the user detaches.
func (l *Launcher) ensure(ctx context.Context, name, dir string) (bool, error) {
	if l.locker != nil {
		release, err := l.locker.Acquire(ctx)
		if err != nil {
			return false, err
		}
		defer release()
	}
	return l.sessions.EnsureSession(ctx, name, dir)
}
