package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/ports"
)

// mockInteractor answers every overwrite question with answer
type mockInteractor struct {
	answer bool
	err    error
	asked  [][2]string
}

func (m *mockInteractor) Output(message string)                    { /* mock implementation */ }
func (m *mockInteractor) Warning(message string)                   { /* mock implementation */ }
func (m *mockInteractor) Error(message string, err error)          { /* mock implementation */ }
func (m *mockInteractor) StartSpinner(message string)              { /* mock implementation */ }
func (m *mockInteractor) StopSpinner(success bool, message string) { /* mock implementation */ }

func (m *mockInteractor) ConfirmOverwrite(src, dst string) (bool, error) {
	m.asked = append(m.asked, [2]string{src, dst})
	return m.answer, m.err
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDetectConflict(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	touch(t, src)
	cr := NewConflictResolverService(nil, zerolog.Nop())
	ctx := context.Background()

	info, err := cr.DetectConflict(ctx, src, filepath.Join(dir, "free"))
	require.NoError(t, err)
	assert.Nil(t, info)

	dst := filepath.Join(dir, "taken")
	touch(t, dst)
	info, err = cr.DetectConflict(ctx, src, dst)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, types.ConflictFileExists, info.ConflictType)

	dstDir := filepath.Join(dir, "taken-dir")
	require.NoError(t, os.Mkdir(dstDir, 0o755))
	info, err = cr.DetectConflict(ctx, src, dstDir)
	require.NoError(t, err)
	assert.Equal(t, types.ConflictTypeMismatch, info.ConflictType)
	assert.True(t, info.TargetIsDir)

	srcDir := filepath.Join(dir, "src-dir")
	require.NoError(t, os.Mkdir(srcDir, 0o755))
	info, err = cr.DetectConflict(ctx, srcDir, dstDir)
	require.NoError(t, err)
	assert.Equal(t, types.ConflictDirectoryExists, info.ConflictType)

	// a dangling symlink still occupies the name
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), link))
	info, err = cr.DetectConflict(ctx, src, link)
	require.NoError(t, err)
	assert.NotNil(t, info)

	_, err = cr.DetectConflict(ctx, filepath.Join(dir, "missing"), dst)
	assert.Error(t, err)
}

func TestResolveConflict(t *testing.T) {
	file := &types.ConflictInfo{SourcePath: "/a", TargetPath: "/b", ConflictType: types.ConflictFileExists}
	mismatch := &types.ConflictInfo{SourcePath: "/a", TargetPath: "/b", ConflictType: types.ConflictTypeMismatch}
	ctx := context.Background()

	tests := []struct {
		name       string
		interactor *mockInteractor
		conflict   *types.ConflictInfo
		strategy   options.ConflictStrategy
		want       types.Resolution
	}{
		{"overwrite", nil, file, options.ConflictOverwrite, types.ResolutionOverwrite},
		{"overwrite across kinds", nil, mismatch, options.ConflictOverwrite, types.ResolutionConflict},
		{"skip", nil, file, options.ConflictSkip, types.ResolutionConflict},
		{"ask without interactor", nil, file, options.ConflictAskPerEntry, types.ResolutionConflict},
		{"ask confirmed", &mockInteractor{answer: true}, file, options.ConflictAskPerEntry, types.ResolutionOverwrite},
		{"ask declined", &mockInteractor{answer: false}, file, options.ConflictAskPerEntry, types.ResolutionSkip},
		{"ask with nobody to answer", &mockInteractor{err: ports.ErrNoOperator}, file, options.ConflictAskPerEntry, types.ResolutionConflict},
		{"no conflict", nil, nil, options.ConflictSkip, types.ResolutionOverwrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := NewConflictResolverService(nil, zerolog.Nop())
			if tt.interactor != nil {
				cr = NewConflictResolverService(tt.interactor, zerolog.Nop())
			}
			got, err := cr.ResolveConflict(ctx, tt.conflict, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.interactor != nil {
				assert.Equal(t, [][2]string{{"/a", "/b"}}, tt.interactor.asked)
			}
		})
	}
}

func TestResolveConflictErrors(t *testing.T) {
	file := &types.ConflictInfo{SourcePath: "/a", TargetPath: "/b", ConflictType: types.ConflictFileExists}

	cr := NewConflictResolverService(&mockInteractor{err: errors.New("tty closed")}, zerolog.Nop())
	_, err := cr.ResolveConflict(context.Background(), file, options.ConflictAskPerEntry)
	assert.ErrorContains(t, err, "tty closed")

	_, err = cr.ResolveConflict(context.Background(), file, options.ConflictStrategy("rename"))
	assert.ErrorContains(t, err, "unknown conflict strategy")
}
