// pattern: Functional Core

package launcher

import (
	"projmux/internal/discovery"
)

// TargetKind says what to do with a selection.
type TargetKind int

const (
	// TargetCreate is free text typed into the picker.
	TargetCreate TargetKind = iota
	// TargetSession is a live session line.
	TargetSession
	// TargetProject is a catalog entry.
	TargetProject
)

func (k TargetKind) String() string {
	switch k {
	case TargetCreate:
		return "create"
	case TargetSession:
		return "session"
	case TargetProject:
		return "project"
	default:
		return "unknown"
	}
}

// Target is a parsed and resolved selection.
type Target struct {
	Kind     TargetKind
	Category string
	// Name is the sub-path for projects, the session name for sessions,
	// and empty for create.
	Name string
	// Path is the starting directory. It is empty for sessions, and for
	// create, where it means the home directory.
	Path string
}

// Resolve turns a selected line into a Target. Free text without a
// separator starts a new session at home. Lines in the session category
// always attach and are never looked up in the catalog.
func Resolve(catalog *discovery.Catalog, line string) (Target, error) {
	key, ok := discovery.ParseLine(line)
	if !ok {
		return Target{Kind: TargetCreate, Category: line}, nil
	}

	if key.Category == discovery.SessionCategory {
		return Target{Kind: TargetSession, Category: key.Category, Name: key.SubPath}, nil
	}

	path, found := catalog.Lookup(key)
	if !found {
		return Target{}, &Error{Kind: KindLookupMiss, Key: line, Err: errNotInCatalog}
	}
	return Target{Kind: TargetProject, Category: key.Category, Name: key.SubPath, Path: path}, nil
}
