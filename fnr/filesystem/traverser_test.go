package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/trees"
)

const (
	cp949Name = "\xc7\xd1\xb0\xe8" // "한계" in CP949
	badName   = "x\xff"            // not decodable under CP949
)

// createTestStructure builds
//
//	root/
//	├── a.txt
//	├── z/
//	│   └── <cp949>.txt
//	└── <cp949>/
//	    ├── deep/
//	    │   └── leaf
//	    └── inner.txt
func createTestStructure(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "root")
	mustMkdir(t, root)
	mustWrite(t, filepath.Join(root, "a.txt"))
	mustMkdir(t, filepath.Join(root, cp949Name))
	mustWrite(t, filepath.Join(root, cp949Name, "inner.txt"))
	mustMkdir(t, filepath.Join(root, cp949Name, "deep"))
	mustWrite(t, filepath.Join(root, cp949Name, "deep", "leaf"))
	mustMkdir(t, filepath.Join(root, "z"))
	mustWrite(t, filepath.Join(root, "z", cp949Name+".txt"))
	return root
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.Mkdir(path, 0o755))
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func walkAll(t *testing.T, s *Session, step int) TraversalStatus {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if st := s.Advance(step); st.Done {
			return st
		}
	}
	t.Fatal("walk did not finish")
	return TraversalStatus{}
}

func relPaths(t *testing.T, root string, nodes []trees.TreeNode) []string {
	t.Helper()
	base := filepath.Dir(root)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		rel, err := filepath.Rel(base, n.Path)
		require.NoError(t, err)
		out = append(out, rel)
	}
	return out
}

func TestTraversalPreOrder(t *testing.T) {
	root := createTestStructure(t)

	s, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP949")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State())

	st := walkAll(t, s, 1000)
	assert.True(t, st.Done)
	assert.True(t, st.AllSucceeded)
	assert.Equal(t, StateDone, s.State())

	// entries are ordered by raw bytes, so 'z' sorts before 0xC7
	assert.Equal(t, []string{
		"root",
		"root/a.txt",
		"root/z",
		"root/z/" + cp949Name + ".txt",
		"root/" + cp949Name,
		"root/" + cp949Name + "/deep",
		"root/" + cp949Name + "/deep/leaf",
		"root/" + cp949Name + "/inner.txt",
	}, relPaths(t, root, s.Tree().Nodes()))

	n, ok := s.Tree().Lookup(filepath.Join(root, "z", cp949Name+".txt"))
	require.True(t, ok)
	assert.Equal(t, "한계.txt", n.ProposedName)
	assert.Equal(t, 2, n.Depth)

	m := s.Metrics()
	assert.Equal(t, int64(4), m.Directories)
	assert.Equal(t, int64(4), m.Files)
	assert.Zero(t, m.Failed)
}

func TestTraversalScenarioC(t *testing.T) {
	base := t.TempDir()
	first := filepath.Join(base, "first")
	mustMkdir(t, first)
	mustWrite(t, filepath.Join(first, "file"))
	mustMkdir(t, filepath.Join(first, "sub"))
	mustWrite(t, filepath.Join(first, "sub", "c1"))
	mustWrite(t, filepath.Join(first, "sub", "c2"))
	second := filepath.Join(base, "second")
	mustWrite(t, second)

	s, err := StartTraversal([]FileRef{LocalRef(first), LocalRef(second)}, true, "CP1252")
	require.NoError(t, err)
	walkAll(t, s, 3)

	var names []string
	for _, n := range s.Tree().Nodes() {
		names = append(names, n.RawName)
	}
	assert.Equal(t, []string{"first", "file", "sub", "c1", "c2", "second"}, names)
	assert.Equal(t, []trees.NodeID{0, 5}, s.Tree().Roots())
}

func TestTraversalBatchSizeInvariance(t *testing.T) {
	root := createTestStructure(t)

	for _, sorted := range []bool{true, false} {
		reference, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP949", WithSortEntries(sorted), WithChunkSize(2))
		require.NoError(t, err)
		walkAll(t, reference, 1<<20)
		want := reference.Tree().Nodes()

		for _, step := range []int{1, 2, 3, 7} {
			s, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP949", WithSortEntries(sorted), WithChunkSize(2))
			require.NoError(t, err)

			var got []trees.TreeNode
			cursor := 0
			for {
				st := s.Advance(step)
				var fresh []trees.TreeNode
				fresh, cursor = s.Since(cursor)
				assert.LessOrEqual(t, len(fresh), step)
				got = append(got, fresh...)
				if st.Done {
					break
				}
			}
			assert.Equal(t, want, got, "sorted=%t step=%d", sorted, step)
		}
	}
}

func TestTraversalAllSucceeded(t *testing.T) {
	root := createTestStructure(t)
	mustWrite(t, filepath.Join(root, badName))

	s, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP949")
	require.NoError(t, err)
	st := walkAll(t, s, 5)
	assert.False(t, st.AllSucceeded)
	assert.Equal(t, 1, s.Tree().FailedCount())
	assert.Equal(t, int64(1), s.Metrics().Failed)

	n, ok := s.Tree().Lookup(filepath.Join(root, badName))
	require.True(t, ok)
	assert.False(t, n.Proposed)
	assert.Equal(t, "x%ff", n.DisplayText)

	// CP1252 leaves 0xFF defined, so every name has a proposal
	ok, err = s.RecomputeEncoding("CP1252")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.AllSucceeded())
	assert.Equal(t, codepage.EncodingID("CP1252"), s.Encoding())

	_, err = s.RecomputeEncoding("CP0")
	assert.ErrorIs(t, err, codepage.ErrUnknownEncoding)
}

func TestTraversalWithoutSubdirectories(t *testing.T) {
	root := createTestStructure(t)
	file := filepath.Join(root, "a.txt")

	s, err := StartTraversal([]FileRef{LocalRef(root), LocalRef(file)}, false, "CP949")
	require.NoError(t, err)
	assert.False(t, s.IncludeSubdirectories())

	st := s.Advance(100)
	assert.True(t, st.Done)
	nodes := s.Tree().Nodes()
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].IsDir)
	assert.False(t, nodes[1].IsDir)
}

func TestTraversalEnumerationFailure(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	mustMkdir(t, root)
	gone := filepath.Join(root, "gone")
	mustMkdir(t, gone)
	mustWrite(t, filepath.Join(gone, "child"))
	mustWrite(t, filepath.Join(root, "kept"))

	s, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP1252")
	require.NoError(t, err)

	// root, then "gone" is emitted and pushed
	require.False(t, s.Advance(2).Done)
	require.NoError(t, os.RemoveAll(gone))

	st := walkAll(t, s, 10)
	assert.True(t, st.AllSucceeded)
	var names []string
	for _, n := range s.Tree().Nodes() {
		names = append(names, n.RawName)
	}
	assert.Equal(t, []string{"root", "gone", "kept"}, names)
	assert.Equal(t, int64(1), s.Metrics().EnumerateFails)
}

func TestTraversalMissingRoot(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "present"))

	s, err := StartTraversal([]FileRef{LocalRef(filepath.Join(dir, "absent")), LocalRef(filepath.Join(dir, "present"))}, true, "CP1252")
	require.NoError(t, err)
	walkAll(t, s, 1)
	require.Equal(t, 1, s.Tree().Len())
	assert.Equal(t, int64(1), s.Metrics().EnumerateFails)
}

func TestTraversalOverlappingRoots(t *testing.T) {
	root := createTestStructure(t)
	sub := filepath.Join(root, "z")

	tests := []struct {
		name  string
		roots []string
	}{
		{"repeated root", []string{root, root + string(filepath.Separator)}},
		{"nested root after its parent", []string{root, sub}},
		{"nested root before its parent", []string{sub, root}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := make([]FileRef, len(tt.roots))
			for i, r := range tt.roots {
				refs[i] = LocalRef(r)
			}
			s, err := StartTraversal(refs, true, "CP949")
			require.NoError(t, err)
			walkAll(t, s, 3)

			nodes := s.Tree().Nodes()
			assert.Len(t, nodes, 8)
			assert.Equal(t, root, nodes[0].Path)
			assert.Equal(t, []trees.NodeID{0}, s.Tree().Roots())
			seen := make(map[string]bool)
			for _, n := range nodes {
				assert.False(t, seen[n.Path], "%s emitted twice", n.Path)
				seen[n.Path] = true
			}
		})
	}

	// without descending, a nested root is an entry of its own
	s, err := StartTraversal([]FileRef{LocalRef(root), LocalRef(sub), LocalRef(root)}, false, "CP949")
	require.NoError(t, err)
	walkAll(t, s, 10)
	assert.Equal(t, []string{"root", filepath.Join("root", "z")}, relPaths(t, root, s.Tree().Nodes()))
}

func TestTraversalExclude(t *testing.T) {
	root := createTestStructure(t)
	mustMkdir(t, filepath.Join(root, "node_modules"))
	mustWrite(t, filepath.Join(root, "node_modules", "pkg.json"))
	mustWrite(t, filepath.Join(root, "build.tmp"))

	s, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP949", WithExclude("node_modules/", "*.tmp", "deep"))
	require.NoError(t, err)
	walkAll(t, s, 4)

	for _, n := range s.Tree().Nodes() {
		assert.NotContains(t, n.Path, "node_modules")
		assert.NotContains(t, n.Path, ".tmp")
		assert.NotContains(t, n.Path, "deep")
	}
	_, ok := s.Tree().Lookup(filepath.Join(root, cp949Name, "inner.txt"))
	assert.True(t, ok)
}

func TestTraversalDoesNotFollowSymlinks(t *testing.T) {
	root := createTestStructure(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "z"), filepath.Join(root, "link")))

	s, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP949")
	require.NoError(t, err)
	walkAll(t, s, 100)

	link, ok := s.Tree().Lookup(filepath.Join(root, "link"))
	require.True(t, ok)
	assert.False(t, link.IsDir)
	assert.Empty(t, s.Tree().Children(link.ID))
}

func TestStartTraversalValidation(t *testing.T) {
	_, err := StartTraversal(nil, true, "CP949")
	assert.ErrorIs(t, err, common.ErrEmptyRoots)

	remote, err := ParseFileRef("smb://nas/share")
	require.NoError(t, err)
	_, err = StartTraversal([]FileRef{LocalRef(t.TempDir()), remote}, true, "CP949")
	assert.ErrorIs(t, err, common.ErrNotLocal)

	_, err = StartTraversal([]FileRef{LocalRef(t.TempDir())}, true, "CP65001")
	assert.ErrorIs(t, err, codepage.ErrUnknownEncoding)
}

func TestTraversalClose(t *testing.T) {
	root := createTestStructure(t)

	s, err := StartTraversal([]FileRef{LocalRef(root)}, true, "CP949", WithSortEntries(false))
	require.NoError(t, err)
	require.False(t, s.Advance(3).Done)

	s.Close()
	assert.Equal(t, StateDone, s.State())
	st := s.Advance(10)
	assert.True(t, st.Done)
	assert.Equal(t, 3, s.Tree().Len())
}

func TestTraversalStatusString(t *testing.T) {
	assert.Equal(t, "continuing", TraversalStatus{}.String())
	assert.Equal(t, "done(all_succeeded=true)", TraversalStatus{Done: true, AllSucceeded: true}.String())
}
