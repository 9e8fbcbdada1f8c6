package node

import "context"

// IndicatorRecord is a key plus its attribute mapping, as returned by
// GetAll/GetRange query hooks.
type IndicatorRecord struct {
	Indicator string
	Value     map[string]any
}

// Hooks is the capability every concrete node must supply: what to do
// with a record once it has passed (or been dropped by) the node's
// infilters. The node's own business logic — miners, processors,
// outputs — lives entirely behind this interface; the runtime specifies
// only the contract.
type Hooks interface {
	// FilteredUpdate is invoked with the post-infilter record. source is
	// empty for a source node's own synthetic updates, or the upstream
	// node name for ordinary data-path traffic.
	FilteredUpdate(ctx context.Context, source, indicator string, value map[string]any)

	// FilteredWithdraw is invoked unconditionally for withdraws, and for
	// updates that the infilters dropped (carrying the pre-filter value,
	// since downstream still needs an explicit retraction, not silence).
	FilteredWithdraw(ctx context.Context, source, indicator string, value map[string]any)
}

// QueryHooks answers the node's read-only RPC surface (get, get_all,
// get_range, length). A node with no backing store need not implement
// any of these; NopQueryHooks answers all four with ErrNotImplemented.
type QueryHooks interface {
	Get(ctx context.Context, source, indicator string) (map[string]any, error)
	GetAll(ctx context.Context, source string) ([]IndicatorRecord, error)
	GetRange(ctx context.Context, source, index, fromKey, toKey string) ([]IndicatorRecord, error)
	Length(ctx context.Context, source string) (int, error)
}

// NopQueryHooks is a QueryHooks that answers every query with
// ErrNotImplemented, for nodes with no backing store to query.
type NopQueryHooks struct{}

func (NopQueryHooks) Get(context.Context, string, string) (map[string]any, error) {
	return nil, ErrNotImplemented
}

func (NopQueryHooks) GetAll(context.Context, string) ([]IndicatorRecord, error) {
	return nil, ErrNotImplemented
}

func (NopQueryHooks) GetRange(context.Context, string, string, string, string) ([]IndicatorRecord, error) {
	return nil, ErrNotImplemented
}

func (NopQueryHooks) Length(context.Context, string) (int, error) {
	return 0, ErrNotImplemented
}

// LifecycleHooks backs the mgmt-bus rebuild/reset operations. Reset must
// discard any accumulated state; Rebuild may re-derive it from an
// external source. Both run while the node is in their respective
// transitional state (REBUILDING/RESET) and must return promptly —
// long-running work should be kicked off and tracked elsewhere, not
// performed synchronously here.
type LifecycleHooks interface {
	Rebuild(ctx context.Context)
	Reset(ctx context.Context)
}

// NopLifecycleHooks is a LifecycleHooks whose Rebuild and Reset do
// nothing.
type NopLifecycleHooks struct{}

func (NopLifecycleHooks) Rebuild(context.Context) {}
func (NopLifecycleHooks) Reset(context.Context)   {}
