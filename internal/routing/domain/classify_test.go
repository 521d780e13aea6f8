package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePathRules(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{name: "already clean", path: "svc/handler.go", want: "svc/handler.go"},
		{name: "dot prefix and double slash", path: "./svc//handler.go", want: "svc/handler.go"},
		{name: "trailing slash", path: "svc/lib/", want: "svc/lib"},
		{name: "empty", path: "", wantErr: "empty path"},
		{name: "whitespace", path: "   ", wantErr: "empty path"},
		{name: "absolute", path: "/etc/passwd", wantErr: "absolute path"},
		{name: "parent traversal", path: "svc/../../etc/passwd", wantErr: "parent directory segment"},
		{name: "only dots", path: "./.", wantErr: "no path segments"},
		{name: "nul byte", path: "svc/a\x00b", wantErr: "NUL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, perr := normalizePath(tt.path)
			if tt.wantErr != "" {
				require.NotNil(t, perr)
				assert.Equal(t, tt.path, perr.Path)
				assert.Contains(t, perr.Error(), tt.wantErr)
				return
			}
			require.Nil(t, perr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		mode  ProjectStructureMode
		paths []string
		want  []ProjectIdentifier
	}{
		{
			name:  "split top-level folders",
			mode:  StructureSplit,
			paths: []string{"folder1/added.py", "folder2/removed.py", "folder3/modified.py"},
			want:  []ProjectIdentifier{{Name: "folder1"}, {Name: "folder2"}, {Name: "folder3"}},
		},
		{
			name:  "split ignores root-level files",
			mode:  StructureSplit,
			paths: []string{"README.md"},
			want:  nil,
		},
		{
			name:  "split deduplicates and keeps first-seen order",
			mode:  StructureSplit,
			paths: []string{"svc-b/a.py", "svc-a/a.py", "svc-b/b.py", "svc-b/deep/c.py"},
			want:  []ProjectIdentifier{{Name: "svc-b"}, {Name: "svc-a"}},
		},
		{
			name:  "hidden top-level entries are ignored",
			mode:  StructureSplit,
			paths: []string{".github/workflows/ci.yml", ".gitignore", "api/main.go"},
			want:  []ProjectIdentifier{{Name: "api"}},
		},
		{
			name:  "paths are normalized before classification",
			mode:  StructureSplit,
			paths: []string{"./api//main.go"},
			want:  []ProjectIdentifier{{Name: "api"}},
		},
		{
			name:  "nested pairs",
			mode:  StructureNested,
			paths: []string{"service-1/microservice-1/handler.js", "service-1/microservice-2/lib/x.js"},
			want: []ProjectIdentifier{
				{Parent: "service-1", Name: "microservice-1"},
				{Parent: "service-1", Name: "microservice-2"},
			},
		},
		{
			name:  "nested needs two directories",
			mode:  StructureNested,
			paths: []string{"service-1/README.md", "README.md"},
			want:  nil,
		},
		{
			name:  "combined maps any file to its folder",
			mode:  StructureCombined,
			paths: []string{"svc/a.py", "svc/b.py"},
			want:  []ProjectIdentifier{{Name: "svc"}},
		},
		{
			name:  "full skips the grouping folder",
			mode:  StructureFull,
			paths: []string{"services/billing/invoices/main.go", "services/billing/README.md"},
			want:  []ProjectIdentifier{{Group: "services", Parent: "billing", Name: "invoices"}},
		},
		{
			name:  "unknown mode yields nothing",
			mode:  ProjectStructureMode("flat"),
			paths: []string{"svc/a.py"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.paths, tt.mode)
			assert.Empty(t, got.Invalid)
			if len(tt.want) == 0 {
				assert.Empty(t, got.Projects)
				return
			}
			assert.Equal(t, tt.want, got.Projects)
		})
	}
}

func TestClassify_InvalidPathsAreDroppedIndividually(t *testing.T) {
	got := Classify([]string{"../secrets/key", "api/main.go", "", "/abs/x.go", "web/index.ts"}, StructureSplit)

	assert.Equal(t, []ProjectIdentifier{{Name: "api"}, {Name: "web"}}, got.Projects)
	require.Len(t, got.Invalid, 3)
	assert.Equal(t, "../secrets/key", got.Invalid[0].Path)
	assert.Equal(t, "", got.Invalid[1].Path)
	assert.Equal(t, "/abs/x.go", got.Invalid[2].Path)
}

func TestClassify_CombinedIsIdempotent(t *testing.T) {
	one := Classify([]string{"svc/a.py"}, StructureCombined)
	all := Classify([]string{"svc/a.py", "svc/b.py"}, StructureCombined)

	assert.Equal(t, []ProjectIdentifier{{Name: "svc"}}, one.Projects)
	assert.Equal(t, one, all)
}

func TestProjectIdentifier_String(t *testing.T) {
	assert.Equal(t, "docs", ProjectIdentifier{Name: "docs"}.String())
	assert.Equal(t, "service-1/microservice-1", ProjectIdentifier{Parent: "service-1", Name: "microservice-1"}.String())
}
