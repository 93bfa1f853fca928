package vmbridge

import "github.com/hostvm/vm-bridge/xvm"

// RevisionFor maps the host feature-flag set to the foreign engine
// revision. Pure and total.
//
// Checks run newest-first: later milestones are supersets of the earlier
// capability flags, so the first set flag decides and each check stays a
// single positive test. With no flag set the initial revision applies.
func RevisionFor(f Features) xvm.Revision {
	if f.ExtendedCreate {
		return xvm.RevExtendedCreate
	}
	if f.Revert {
		return xvm.RevRevert
	}
	if f.StateClearing {
		return xvm.RevStateClearing
	}
	if f.Repricing {
		return xvm.RevRepricing
	}
	if f.Delegation {
		return xvm.RevDelegation
	}
	return xvm.RevInitial
}
