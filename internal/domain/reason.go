package domain

// ValidityReason classifies why a raw book is unusable for pricing.
// ValidityNone means the book passed every check. Reasons are data-quality
// classifications, not errors: they are attached to snapshots as values and
// never propagated as Go errors.
type ValidityReason string

const (
	ValidityNone            ValidityReason = ""
	ValidityNoBid           ValidityReason = "no_bid"
	ValidityNoAsk           ValidityReason = "no_ask"
	ValidityNaNOrInf        ValidityReason = "nan_or_inf"
	ValidityOutOfRange      ValidityReason = "out_of_range"
	ValidityCrossedOrLocked ValidityReason = "crossed_or_locked"
	ValidityInvalidMid      ValidityReason = "invalid_mid"
)

// FilterReason classifies why a signal candidate failed the filter chain, or
// why one side of a snapshot was suppressed entirely. FilterNone means the
// candidate passed every filter.
type FilterReason string

const (
	FilterNone          FilterReason = ""
	FilterSpreadTooWide FilterReason = "spread_too_wide"
	FilterDepthTooThin  FilterReason = "depth_too_thin"
	FilterSnapshotStale FilterReason = "snapshot_stale"

	// FilterInvalidBook and FilterZeroExecPrice are not produced by the
	// filter chain itself: they record the executable-price guard that
	// suppresses candidate emission for invalid or degenerately priced
	// books, so per-cycle reason counts stay complete.
	FilterInvalidBook   FilterReason = "invalid_book"
	FilterZeroExecPrice FilterReason = "zero_exec_price"
)
