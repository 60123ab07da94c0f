package bramble

import "github.com/pkg/errors"

// Configuration errors. These indicate a programming mistake in the caller
// and abort the offending operation.
var (
	ErrNoDefaultAnimation = errors.New("bramble: animation set has no default entry")
	ErrUnknownAnimation   = errors.New("bramble: unknown animation")
	ErrInvalidLayer       = errors.New("bramble: invalid render layer")
	ErrTilemapPair        = errors.New("bramble: two tilemaps cannot be collision-tested")
)

// Recoverable misuse. The call becomes a no-op and the engine keeps running.
var (
	ErrAlreadyOwned   = errors.New("bramble: entity already belongs to a screen")
	ErrPendingAdd     = errors.New("bramble: entity already scheduled for addition")
	ErrPendingRemoval = errors.New("bramble: entity already scheduled for removal")
	ErrNotOwned       = errors.New("bramble: entity does not belong to this screen")
	ErrDestroyed      = errors.New("bramble: entity was destroyed")
)

// Pool misuse.
var (
	ErrPoolUnfinished = errors.New("bramble: released pooled instance is not finished")
	ErrNotFromPool    = errors.New("bramble: instance is not checked out of this pool")
)
