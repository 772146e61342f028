package project_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

const sample = `
name = "demo"

[dependencies.a]
pkg = "u/a"
version = "1.0.0"

[dependencies.b]
path = "../b"

[build_dependencies.tool]
git = "https://example.com/tool.git"
rev = "deadbeef"

[exports.widgets]
path = "src/widgets.zig"
dependencies = ["a"]
`

func TestParseCoversAllSourceKinds(t *testing.T) {
	p, err := project.Parse([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, "demo", p.Name)
	require.Len(t, p.Deps, 2)
	require.Len(t, p.BuildDeps, 1)
	require.Len(t, p.Exports, 1)

	var a, b *project.Dependency
	for i := range p.Deps {
		switch p.Deps[i].Alias {
		case "a":
			a = &p.Deps[i]
		case "b":
			b = &p.Deps[i]
		}
	}
	require.NotNil(t, a)
	require.Equal(t, project.SourcePkg, a.Source.Kind)
	require.Equal(t, "u", a.Source.User)
	require.Equal(t, "a", a.Source.Name)

	require.NotNil(t, b)
	require.Equal(t, project.SourceLocal, b.Source.Kind)
	require.Equal(t, "../b", b.Source.Path)

	require.Equal(t, project.SourceGit, p.BuildDeps[0].Source.Kind)
	require.Equal(t, "deadbeef", p.BuildDeps[0].Source.Revision)
}

func TestParseRejectsMalformedPkgCoordinate(t *testing.T) {
	_, err := project.Parse([]byte(`
[dependencies.a]
pkg = "no-slash"
`))
	require.Error(t, err)
}

func TestParseRejectsDependencyWithNoSource(t *testing.T) {
	_, err := project.Parse([]byte(`
[dependencies.a]
version = "1.0.0"
`))
	require.Error(t, err)
}
