package launcher

import (
	"testing"

	"projmux/internal/discovery"
)

func TestResolve(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		line string
		want Target
	}{
		{"work:alpha", Target{Kind: TargetProject, Category: "work", Name: "alpha", Path: "/src/work/alpha"}},
		{"work:beta/sub", Target{Kind: TargetProject, Category: "work", Name: "beta/sub", Path: "/src/work/beta/sub"}},
		{"session:foo", Target{Kind: TargetSession, Category: "session", Name: "foo"}},
		{"session:a:b", Target{Kind: TargetSession, Category: "session", Name: "a:b"}},
		{"scratch", Target{Kind: TargetCreate, Category: "scratch"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Resolve(catalog, tt.line)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestResolve_SubPathWithSeparator(t *testing.T) {
	catalog := discovery.NewCatalog()
	catalog.Insert(discovery.Key{Category: "work", SubPath: "odd:name"}, "/src/work/odd:name")

	got, err := Resolve(catalog, "work:odd:name")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Path != "/src/work/odd:name" {
		t.Errorf("Path = %q", got.Path)
	}
}

func TestResolve_Miss(t *testing.T) {
	_, err := Resolve(testCatalog(), "work:missing")
	if kind, ok := KindOf(err); !ok || kind != KindLookupMiss {
		t.Fatalf("Resolve() error = %v, want lookup miss", err)
	}
}
