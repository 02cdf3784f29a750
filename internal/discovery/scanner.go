// pattern: Imperative Shell

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"projmux/internal/logging"
)

// DefaultMaxDepth is how many levels below the root are visited.
const DefaultMaxDepth = 6

// DefaultMarker is the directory name that marks a project root.
const DefaultMarker = ".git"

// ErrRootNotDir is returned when the scan root is missing or not a directory.
var ErrRootNotDir = errors.New("scan root is not a directory")

// Scanner discovers version-controlled projects below a root directory.
type Scanner struct {
	maxDepth int
	marker   string
	logger   *logging.ScopedLogger
	walk     func(root string, fn fs.WalkDirFunc) error
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) { s.maxDepth = depth }
}

// WithMarker overrides DefaultMarker.
func WithMarker(marker string) Option {
	return func(s *Scanner) { s.marker = marker }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger *logging.ScopedLogger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// NewScanner creates a new project scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		maxDepth: DefaultMaxDepth,
		marker:   DefaultMarker,
		logger:   logging.NopLogger(),
		walk:     filepath.WalkDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index walks root and returns the catalog of discovered projects.
// Unreadable entries are skipped; only a bad root is an error. Recorded
// paths are rooted at root as given, even when root is a symlink.
func (s *Scanner) Index(root string) (*Catalog, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotDir, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		walkRoot = root
	}

	catalog := NewCatalog()
	skipped := 0

	walkErr := s.walk(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission denied, vanished entry and the like.
			skipped++
			if d != nil && d.IsDir() && path != walkRoot {
				return fs.SkipDir
			}
			return nil
		}
		if path == walkRoot || !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			skipped++
			return fs.SkipDir
		}

		if s.isMarker(d.Name()) {
			if key, projectRel, ok := s.keyFor(rel, d.Name()); ok {
				projectPath := filepath.Join(root, projectRel)
				catalog.Insert(key, projectPath)
				s.logger.Debug("project discovered", "key", key.String(), "path", projectPath)
			}
			return fs.SkipDir
		}

		if depthOf(rel) >= s.maxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", root, walkErr)
	}

	s.logger.Info("scan complete", "root", root, "projects", catalog.Len(), "skipped", skipped)
	return catalog, nil
}

// isMarker reports whether a directory name ends with the marker. Names
// that are not valid UTF-8 never match.
func (s *Scanner) isMarker(name string) bool {
	return utf8.ValidString(name) && strings.HasSuffix(name, s.marker)
}

// keyFor derives the catalog key for a marker directory at rel (relative
// to the scan root). For an exact marker ("work/beta/sub/.git") the project
// is the parent directory; for a suffix match ("work/mirrors/tool.git") it
// is the directory itself. The first segment is the category and the rest
// form the sub-path. The returned path is relative to the scan root.
func (s *Scanner) keyFor(rel, name string) (Key, string, bool) {
	projectRel := rel
	if name == s.marker {
		projectRel = filepath.Dir(rel)
	}
	if projectRel == "." {
		// A marker directly under root has no category.
		return Key{}, "", false
	}

	segments := strings.Split(filepath.ToSlash(projectRel), "/")
	category := SanitizeCategory(segments[0])
	subPath := strings.Join(segments[1:], "/")
	if subPath == "" {
		// The category directory is itself the project.
		subPath = segments[0]
	}
	return Key{Category: category, SubPath: subPath}, projectRel, true
}

func depthOf(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
