package tally

import "github.com/xraph/tally/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	Cents      = types.Cents
	Major      = types.Major
	ParseMajor = types.ParseMajor
	Sum        = types.Sum
)

// Zero is the zero amount.
const Zero = types.Zero
