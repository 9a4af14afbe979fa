package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"golang.org/x/sync/errgroup"
)

// AuditReport lists every sibling group whose positions are not dense.
type AuditReport struct {
	CheckedAt  time.Time              `json:"checkedAt"`
	Groups     map[sequencer.Kind]int `json:"groupsChecked"`
	Violations []sequencer.Violation  `json:"violations"`
	Repaired   int                    `json:"repaired"`
}

// Audit verifies density of every sibling group, one kind per goroutine.
// With repair set, each broken group is compacted in its own transaction and
// the repair is recorded as a maintenance run.
func (o *Operator) Audit(ctx context.Context, repair bool) (*AuditReport, error) {
	report := &AuditReport{
		CheckedAt:  time.Now(),
		Groups:     map[sequencer.Kind]int{},
		Violations: []sequencer.Violation{},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range sequencer.Kinds {
		kind := kind
		g.Go(func() error {
			var found []sequencer.Violation
			var checked int
			err := o.store.Transaction(gctx, func(tx *database.Tx) error {
				keys, err := o.seq.Groups(tx, kind)
				if err != nil {
					return err
				}
				checked = len(keys)
				for _, key := range keys {
					v, err := o.seq.Verify(tx, key)
					if err != nil {
						return err
					}
					if v != nil {
						found = append(found, *v)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			mu.Lock()
			report.Groups[kind] = checked
			report.Violations = append(report.Violations, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(report.Violations) > 0 {
		o.log.Warn("integrity audit found sparse groups", "violations", len(report.Violations))
	}
	if !repair || len(report.Violations) == 0 {
		return report, nil
	}

	res, err := o.run(ctx, OpIntegrityRepair, func(tx *database.Tx, res *Result) error {
		for _, v := range report.Violations {
			changed, err := o.seq.Compact(tx, v.Key)
			if err != nil {
				return err
			}
			if changed {
				res.Counts[string(v.Key.Kind)]++
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	report.Repaired = int(sumCounts(res.Counts))
	return report, nil
}

func sumCounts(c graph.Counts) int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}
