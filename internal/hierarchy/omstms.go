package hierarchy

import (
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/oms"
	"github.com/b25/tradingcore/internal/tms"
)

// systems is the shared OMS/TMS pair for one connected subtree,
// grounded on core/oms_tms_mixin.py's OMSTMSMixin. Exactly one is
// created, at the highest connected level; every descendant holds the
// same pointer rather than re-deriving or re-walking to find it — the
// "shared pointer into a process-local registry" design note, with the
// registry reduced to the pointer itself since nothing else needs to
// look systems up by id.
type systems struct {
	oms *oms.OMS
	tms *tms.TMS
}

// initOrInheritSystems returns parent unchanged when non-nil
// (inheriting ownership), or allocates a fresh owner pair when parent
// is nil, matching _initialize_or_inherit_systems. The returned bool
// reports ownership, exposed through IsOMSTMSOwner for diagnostics,
// not used for control flow.
func initOrInheritSystems(parent *systems, logger *zap.Logger, omsOpts []oms.Option, tmsOpts []tms.Option) (*systems, bool) {
	if parent != nil {
		return parent, false
	}
	return &systems{
		oms: oms.New(logger, omsOpts...),
		tms: tms.New(logger, tmsOpts...),
	}, true
}
