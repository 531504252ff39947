package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/interfaces"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/ports"
)

// ConflictResolverService decides what happens when a repaired name is
// already taken. It never overwrites without the strategy or the operator
// allowing it.
type ConflictResolverService struct {
	interactor ports.Interactor
	logger     zerolog.Logger
}

// NewConflictResolverService creates a resolver. interactor may be nil, in
// which case per-entry questions are answered by reporting the conflict.
func NewConflictResolverService(interactor ports.Interactor, logger zerolog.Logger) *ConflictResolverService {
	return &ConflictResolverService{
		interactor: interactor,
		logger:     logger,
	}
}

// DetectConflict checks whether dstPath is taken. It returns nil when the
// destination is free. Neither path is followed through symlinks.
func (cr *ConflictResolverService) DetectConflict(_ context.Context, srcPath, dstPath string) (*types.ConflictInfo, error) {
	dstInfo, err := os.Lstat(dstPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat destination %s: %w", dstPath, err)
	}

	srcInfo, err := os.Lstat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source %s: %w", srcPath, err)
	}

	// On case-folding filesystems the destination can be the source itself
	if os.SameFile(srcInfo, dstInfo) {
		return nil, nil
	}

	var conflictType types.ConflictType
	switch {
	case srcInfo.IsDir() && dstInfo.IsDir():
		conflictType = types.ConflictDirectoryExists
	case !srcInfo.IsDir() && !dstInfo.IsDir():
		conflictType = types.ConflictFileExists
	default:
		conflictType = types.ConflictTypeMismatch
	}

	return &types.ConflictInfo{
		SourcePath:   srcPath,
		TargetPath:   dstPath,
		ConflictType: conflictType,
		SourceIsDir:  srcInfo.IsDir(),
		TargetIsDir:  dstInfo.IsDir(),
	}, nil
}

// ResolveConflict applies strategy to a detected conflict
func (cr *ConflictResolverService) ResolveConflict(ctx context.Context, conflict *types.ConflictInfo, strategy options.ConflictStrategy) (types.Resolution, error) {
	if conflict == nil {
		return types.ResolutionOverwrite, nil
	}

	switch strategy {
	case options.ConflictOverwrite:
		return cr.resolveByOverwrite(conflict)
	case options.ConflictSkip:
		return types.ResolutionConflict, nil
	case options.ConflictAskPerEntry:
		return cr.resolveByPrompt(ctx, conflict)
	default:
		return "", fmt.Errorf("unknown conflict strategy: %s", strategy)
	}
}

// resolveByOverwrite allows replacing the destination unless the kinds
// differ; a rename cannot replace a directory with a file or the reverse.
func (cr *ConflictResolverService) resolveByOverwrite(conflict *types.ConflictInfo) (types.Resolution, error) {
	if conflict.ConflictType == types.ConflictTypeMismatch {
		return types.ResolutionConflict, nil
	}
	return types.ResolutionOverwrite, nil
}

func (cr *ConflictResolverService) resolveByPrompt(_ context.Context, conflict *types.ConflictInfo) (types.Resolution, error) {
	if cr.interactor == nil {
		return types.ResolutionConflict, nil
	}

	ok, err := cr.interactor.ConfirmOverwrite(conflict.SourcePath, conflict.TargetPath)
	if errors.Is(err, ports.ErrNoOperator) {
		return types.ResolutionConflict, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to confirm overwrite of %s: %w", conflict.TargetPath, err)
	}
	cr.logger.Debug().
		Str("src", conflict.SourcePath).
		Str("dst", conflict.TargetPath).
		Bool("confirmed", ok).
		Msg("overwrite confirmation")
	if !ok {
		return types.ResolutionSkip, nil
	}
	return cr.resolveByOverwrite(conflict)
}

// Ensure ConflictResolverService implements the interface
var _ interfaces.ConflictResolver = (*ConflictResolverService)(nil)
