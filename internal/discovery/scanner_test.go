package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"projmux/internal/logging"
)

// mkdirs creates each relative directory under root.
func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestIndex_FindsProjects(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "work/alpha/.git", "work/beta/sub/.git", "work/notaproject")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	if catalog.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", catalog.Len())
	}
	path, ok := catalog.Lookup(Key{"work", "alpha"})
	if !ok || path != filepath.Join(root, "work", "alpha") {
		t.Errorf("Lookup(work:alpha) = %q, %v", path, ok)
	}
	path, ok = catalog.Lookup(Key{"work", "beta/sub"})
	if !ok || path != filepath.Join(root, "work", "beta", "sub") {
		t.Errorf("Lookup(work:beta/sub) = %q, %v", path, ok)
	}

	want := []string{"work:alpha", "work:beta/sub"}
	if got := catalog.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestIndex_EmptyRoot(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "work/plain", "other")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if catalog.Len() != 0 || len(catalog.Lines()) != 0 {
		t.Errorf("expected empty catalog, got %v", catalog.Lines())
	}
}

func TestIndex_SanitizesCategory(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "github.com/someone/tool/.git", ".dotfiles/nvim/.git")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	want := []string{"_dotfiles:nvim", "github_com:someone/tool"}
	if got := catalog.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
	path, ok := catalog.Lookup(Key{"github_com", "someone/tool"})
	if !ok || path != filepath.Join(root, "github.com", "someone", "tool") {
		t.Errorf("Lookup(github_com:someone/tool) = %q, %v", path, ok)
	}
}

func TestIndex_MarkerUnderCategory(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "dotfiles/.git")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	path, ok := catalog.Lookup(Key{"dotfiles", "dotfiles"})
	if !ok || path != filepath.Join(root, "dotfiles") {
		t.Errorf("Lookup(dotfiles:dotfiles) = %q, %v", path, ok)
	}
}

func TestIndex_IgnoresMarkerAtRoot(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".git", "work/alpha/.git")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if got := catalog.Lines(); !reflect.DeepEqual(got, []string{"work:alpha"}) {
		t.Errorf("Lines() = %v, want [work:alpha]", got)
	}
}

func TestIndex_IgnoresMarkerFiles(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "work/worktree")
	// git worktrees use a plain .git file pointing at the real gitdir.
	if err := os.WriteFile(filepath.Join(root, "work", "worktree", ".git"), []byte("gitdir: /elsewhere\n"), 0644); err != nil {
		t.Fatal(err)
	}

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if catalog.Len() != 0 {
		t.Errorf("expected marker file to be ignored, got %v", catalog.Lines())
	}
}

func TestIndex_SuffixMatch(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "mirrors/tool.git/objects")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	path, ok := catalog.Lookup(Key{"mirrors", "tool.git"})
	if !ok || path != filepath.Join(root, "mirrors", "tool.git") {
		t.Errorf("Lookup(mirrors:tool.git) = %q, %v", path, ok)
	}
}

func TestIndex_RespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	// .git at depth 6 is visited, at depth 7 it is not.
	mkdirs(t, root, "a/b/c/d/e/.git", "a/b/c/d/e/f/.git")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if got := catalog.Lines(); !reflect.DeepEqual(got, []string{"a:b/c/d/e"}) {
		t.Errorf("Lines() = %v, want [a:b/c/d/e]", got)
	}

	shallow, err := NewScanner(WithMaxDepth(3)).Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if shallow.Len() != 0 {
		t.Errorf("depth 3 should find nothing, got %v", shallow.Lines())
	}
}

func TestIndex_FindsNestedRepositories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "work/outer/.git/modules/inner", "work/outer/vendor/inner/.git")

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []string{"work:outer", "work:outer/vendor/inner"}
	if got := catalog.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestIndex_CustomMarker(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "work/alpha/.hg", "work/beta/.git")

	catalog, err := NewScanner(WithMarker(".hg")).Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if got := catalog.Lines(); !reflect.DeepEqual(got, []string{"work:alpha"}) {
		t.Errorf("Lines() = %v, want [work:alpha]", got)
	}
}

func TestIndex_SkipsDirectoryRemovedDuringWalk(t *testing.T) {
	lm := logging.NewTestLogManager(100)
	defer func() { _ = lm.Close() }()

	root := t.TempDir()
	mkdirs(t, root, "work/alpha/.git", "work/doomed/inner/.git", "work/zeta/.git")

	s := NewScanner(WithLogger(lm.For("discovery")))
	s.walk = func(root string, fn fs.WalkDirFunc) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() && d.Name() == "doomed" {
				// Vanishes after it was listed but before it is read.
				if rmErr := os.RemoveAll(path); rmErr != nil {
					t.Fatal(rmErr)
				}
			}
			return fn(path, d, err)
		})
	}

	catalog, err := s.Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if got := catalog.Lines(); !reflect.DeepEqual(got, []string{"work:alpha", "work:zeta"}) {
		t.Errorf("Lines() = %v, want [work:alpha work:zeta]", got)
	}

	var skipped any
	for _, entry := range lm.Drain() {
		if entry.Message == "scan complete" {
			skipped = entry.Fields["skipped"]
		}
	}
	if skipped != float64(1) {
		t.Errorf("skipped = %v, want 1", skipped)
	}
}

func TestIndex_SkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	mkdirs(t, root, "work/alpha/.git", "locked/hidden/.git")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if got := catalog.Lines(); !reflect.DeepEqual(got, []string{"work:alpha"}) {
		t.Errorf("Lines() = %v, want [work:alpha]", got)
	}
}

func TestIndex_InvalidUTF8NameNeverMatches(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "work")
	bad := filepath.Join(root, "work", "proj\xff.git")
	if err := os.Mkdir(bad, 0755); err != nil {
		t.Skipf("filesystem rejects invalid UTF-8 names: %v", err)
	}

	catalog, err := NewScanner().Index(root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if catalog.Len() != 0 {
		t.Errorf("expected no projects, got %v", catalog.Lines())
	}
}

func TestIndex_SymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	mkdirs(t, target, "work/alpha/.git")
	link := filepath.Join(t.TempDir(), "src")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	catalog, err := NewScanner().Index(link)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	path, ok := catalog.Lookup(Key{"work", "alpha"})
	if !ok || path != filepath.Join(link, "work", "alpha") {
		t.Errorf("Lookup(work:alpha) = %q, %v; want path under the symlink", path, ok)
	}
}

func TestIndex_RootErrors(t *testing.T) {
	if _, err := NewScanner().Index("/nonexistent/path"); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewScanner().Index(file); err == nil {
		t.Error("expected error for file root")
	}
}

func TestIndex_LogsSummary(t *testing.T) {
	lm := logging.NewTestLogManager(100)
	defer func() { _ = lm.Close() }()

	root := t.TempDir()
	mkdirs(t, root, "work/alpha/.git")

	if _, err := NewScanner(WithLogger(lm.For("discovery"))).Index(root); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	var found bool
	for len(lm.Channel()) > 0 {
		entry := <-lm.Channel()
		if entry.Message == "scan complete" {
			found = true
			if entry.Scope != "discovery" {
				t.Errorf("expected scope 'discovery', got %q", entry.Scope)
			}
			if entry.Fields["projects"] != float64(1) {
				t.Errorf("expected projects=1, got %v", entry.Fields["projects"])
			}
		}
	}
	if !found {
		t.Error("no 'scan complete' log entry")
	}
}
