package microvm

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

// Apply walks every resource slot in a fixed order (drives,
// network_interfaces, pmems, mmds, then the remaining singletons),
// issuing a PUT or PATCH for every not-yet-applied value and recording
// a per-resource error on failure without aborting the rest of the
// pass.
//
// Apply is a no-op when this instance has no REST client (no_api mode):
// configuration went out via the launch-time config file instead.
func (s *Spec) Apply(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}

	preBoot := s.state.preBootWindow()

	for _, kind := range fcapi.ApplyOrder {
		if kind.Collection() {
			s.applyCollection(ctx, kind, preBoot)
			continue
		}
		if kind == fcapi.KindMmds {
			s.applyMmds(ctx)
			continue
		}
		s.applySingleton(ctx, kind, preBoot)
	}

	return nil
}

func (s *Spec) applySingleton(ctx context.Context, kind fcapi.Kind, preBoot bool) {
	slot := s.singletons[string(kind)]
	if slot == nil || slot.Applied {
		return
	}

	endpoint := fcapi.Endpoints[kind]

	if kind == fcapi.KindBalloon {
		s.applyBalloon(ctx, slot, preBoot)
		return
	}

	var err error
	if preBoot {
		err = s.client.Put(ctx, endpoint.Path, slot.Value)
	} else {
		err = s.client.Patch(ctx, endpoint.Path, slot.Value)
	}

	if err != nil {
		s.recordError(string(kind), err.Error())
		return
	}
	slot.Applied = true
	slot.DirtyFields = nil
}

// applyBalloon implements the balloon's split-endpoint patch semantics:
// stats_polling_interval_s goes to /balloon/statistics first; only if
// that succeeds does amount_mib go to /balloon. Post-boot, a field is
// sent only when it was actually present in the Configure bag that made
// this slot dirty, per slot.DirtyFields — not inferred from being
// non-zero in the merged value, since 0 is itself a legal amount_mib or
// stats_polling_interval_s.
func (s *Spec) applyBalloon(ctx context.Context, slot *ResourceSlot, preBoot bool) {
	balloon := slot.Value.(fcapi.Balloon)

	if preBoot {
		if err := s.client.Put(ctx, fcapi.Endpoints[fcapi.KindBalloon].Path, balloon); err != nil {
			s.recordError(string(fcapi.KindBalloon), err.Error())
			return
		}
		slot.Applied = true
		slot.DirtyFields = nil
		return
	}

	if slot.DirtyFields["stats_polling_interval_s"] {
		err := s.client.Patch(ctx, "/balloon/statistics", fcapi.BalloonStatsUpdate{StatsPollingIntervalS: balloon.StatsPollingIntervalS})
		if err != nil {
			s.recordError(string(fcapi.KindBalloon), err.Error())
			return
		}
		delete(slot.DirtyFields, "stats_polling_interval_s")
	}
	if slot.DirtyFields["amount_mib"] {
		err := s.client.Patch(ctx, fcapi.Endpoints[fcapi.KindBalloon].Path, fcapi.BalloonUpdate{AmountMib: balloon.AmountMib})
		if err != nil {
			s.recordError(string(fcapi.KindBalloon), err.Error())
			return
		}
		delete(slot.DirtyFields, "amount_mib")
	}
	slot.Applied = true
}

func (s *Spec) applyCollection(ctx context.Context, kind fcapi.Kind, preBoot bool) {
	coll := s.collectionFor(kind)
	if len(coll) == 0 {
		return
	}
	endpoint := fcapi.Endpoints[kind]

	for id, slot := range coll {
		if slot.Applied {
			continue
		}
		var err error
		if preBoot {
			err = s.client.Put(ctx, endpoint.MemberPath(id), slot.Value)
		} else {
			err = s.client.Patch(ctx, endpoint.MemberPath(id), slot.Value)
		}
		if err != nil {
			s.recordError(fmt.Sprintf("%s/%s", kind, id), err.Error())
			continue
		}
		slot.Applied = true
		slot.DirtyFields = nil
	}
}

func (s *Spec) applyMmds(ctx context.Context) {
	slot := s.singletons[string(fcapi.KindMmds)]
	if slot == nil || slot.Applied {
		return
	}
	data := slot.Value.(map[string]interface{})
	if err := s.client.Put(ctx, fcapi.Endpoints[fcapi.KindMmds].Path, data); err != nil {
		s.recordError(string(fcapi.KindMmds), err.Error())
		return
	}
	slot.Applied = true
}

// CombinedError folds the ordered error log into a single
// *multierror.Error for callers who want one error value to wrap or
// log.Fatal on, while Errors() remains the ordered, per-resource source
// of truth.
func (s *Spec) CombinedError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.errors) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, e := range s.errors {
		result = multierror.Append(result, fmt.Errorf("%s: %s", e.ResourceKey, e.Message))
	}
	return result.ErrorOrNil()
}
