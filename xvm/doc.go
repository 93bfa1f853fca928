// Package xvm declares the foreign engine interface this adapter layer
// consumes: a fixed vtable of engine operations plus the status, revision
// and message types that cross the boundary.
//
// The layout is a contract shared with every engine implementation,
// including ones loaded from shared libraries at runtime. This package
// never implements the interface and never widens or narrows it; it only
// names the documented fields and operations.
package xvm
