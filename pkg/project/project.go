// Package project loads the TOML manifest that seeds a fetch engine run:
// the project's normal and build dependency lists, each dependency's alias
// and source descriptor, and the set of exported sub-packages.
//
// This is a reference implementation of the manifest-loader collaborator;
// the engine (pkg/depgraph/engine) only depends on the Project type, not on
// this loader, so a caller embedding the engine in another tool can supply
// its own.
package project

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// SourceKind identifies which of the four fixed driver families a
// Dependency resolves through.
type SourceKind string

const (
	SourcePkg   SourceKind = "pkg"
	SourceLocal SourceKind = "local"
	SourceURL   SourceKind = "url"
	SourceGit   SourceKind = "git"
)

// Source is the tagged variant carrying one source kind's fields. Only the
// fields matching Kind are populated; the rest are zero.
type Source struct {
	Kind SourceKind

	// SourcePkg
	User    string
	Name    string
	Version string

	// SourceLocal
	Path string

	// SourceURL
	URL       string
	Integrity string

	// SourceGit
	Repo     string
	Revision string
}

// Dependency is one entry in a project's normal or build dependency list:
// the local alias by which the project refers to it, and the source it
// resolves through.
type Dependency struct {
	Alias  string
	Source Source
}

// ExportedPackage is one entry in the project's optional exports table.
type ExportedPackage struct {
	Name         string
	Path         string
	Dependencies []string
}

// Project is the parsed manifest: the root dependency lists the engine
// seeds its Dependency Table from, and the exports table consumed by the
// build-graph emitter's exports block.
type Project struct {
	Name         string
	Deps         []Dependency
	BuildDeps    []Dependency
	Exports      []ExportedPackage
	LockfilePath string
}

// manifest is the raw TOML shape; Load converts it into a Project.
type manifest struct {
	Name string `toml:"name"`

	Deps      map[string]manifestDep `toml:"dependencies"`
	BuildDeps map[string]manifestDep `toml:"build_dependencies"`

	Exports map[string]manifestExport `toml:"exports"`
}

type manifestDep struct {
	Pkg     string `toml:"pkg"`
	Version string `toml:"version"`
	Path    string `toml:"path"`
	URL     string `toml:"url"`
	Hash    string `toml:"hash"`
	Git     string `toml:"git"`
	Rev     string `toml:"rev"`
}

type manifestExport struct {
	Path         string   `toml:"path"`
	Dependencies []string `toml:"dependencies"`
}

// Load reads and parses the manifest at path. The order of Deps,
// BuildDeps and Exports follows Go map iteration over the decoded TOML
// tables and is not stable between calls; callers that need
// deterministic Dependency Table seeding should sort aliases themselves.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest TOML from data into a Project.
func Parse(data []byte) (*Project, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	p := &Project{Name: m.Name}
	for alias, d := range m.Deps {
		src, err := sourceFromManifest(alias, d)
		if err != nil {
			return nil, err
		}
		p.Deps = append(p.Deps, Dependency{Alias: alias, Source: src})
	}
	for alias, d := range m.BuildDeps {
		src, err := sourceFromManifest(alias, d)
		if err != nil {
			return nil, err
		}
		p.BuildDeps = append(p.BuildDeps, Dependency{Alias: alias, Source: src})
	}
	for name, e := range m.Exports {
		p.Exports = append(p.Exports, ExportedPackage{
			Name:         name,
			Path:         e.Path,
			Dependencies: e.Dependencies,
		})
	}
	return p, nil
}

func sourceFromManifest(alias string, d manifestDep) (Source, error) {
	switch {
	case d.Pkg != "":
		user, name, ok := splitUserName(d.Pkg)
		if !ok {
			return Source{}, fmt.Errorf("dependency %q: malformed pkg coordinate %q, want user/name", alias, d.Pkg)
		}
		return Source{Kind: SourcePkg, User: user, Name: name, Version: d.Version}, nil
	case d.Path != "":
		return Source{Kind: SourceLocal, Path: d.Path}, nil
	case d.URL != "":
		return Source{Kind: SourceURL, URL: d.URL, Integrity: d.Hash}, nil
	case d.Git != "":
		return Source{Kind: SourceGit, Repo: d.Git, Revision: d.Rev}, nil
	default:
		return Source{}, fmt.Errorf("dependency %q: no recognized source field (pkg/path/url/git)", alias)
	}
}

func splitUserName(coord string) (user, name string, ok bool) {
	for i := 0; i < len(coord); i++ {
		if coord[i] == '/' {
			return coord[:i], coord[i+1:], true
		}
	}
	return "", "", false
}
