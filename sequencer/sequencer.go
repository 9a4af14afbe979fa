// Package sequencer keeps dense, zero-based positions inside sibling groups.
//
// Positions are derived from the rows on every write: there is no stored
// "next position" counter. Every mutating call takes the group lock through
// the caller's transaction before it reads positions, so concurrent writers of
// one group serialize and no reader ever sees a gap or a duplicate.
package sequencer

import (
	"errors"
	"fmt"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Append asks InsertAt to place the item after the current last member.
const Append = int(^uint(0) >> 1)

type Sequencer struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Sequencer {
	return &Sequencer{log: log.With("component", "Sequencer")}
}

type row struct {
	Item     uuid.UUID
	Position int
}

func (s *Sequencer) scope(tx *database.Tx, key GroupKey, spec groupSpec) *gorm.DB {
	return tx.DB.Table(spec.table).Where(spec.parentColumn+" = ?", key.ParentID)
}

func (s *Sequencer) begin(tx *database.Tx, key GroupKey) (groupSpec, error) {
	spec, err := key.spec()
	if err != nil {
		return spec, err
	}
	return spec, tx.LockGroups(key.String())
}

// rows returns every row of the group, placed rows first in position order
// (ties by insertion order), unplaced rows last.
func (s *Sequencer) rows(tx *database.Tx, key GroupKey, spec groupSpec) ([]row, error) {
	var rows []row
	err := s.scope(tx, key, spec).
		Select(spec.itemColumn + " AS item, position").
		Order("CASE WHEN position < 0 THEN 1 ELSE 0 END, position ASC, created_at ASC, " + spec.itemColumn + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage("read "+key.String(), err)
	}
	return rows, nil
}

func placedCount(rows []row) int {
	n := 0
	for _, r := range rows {
		if r.Position >= 0 {
			n++
		}
	}
	return n
}

func find(rows []row, item uuid.UUID) (row, bool) {
	for _, r := range rows {
		if r.Item == item {
			return r, true
		}
	}
	return row{}, false
}

func (s *Sequencer) shift(tx *database.Tx, key GroupKey, spec groupSpec, delta string, where string, args ...interface{}) error {
	err := s.scope(tx, key, spec).
		Where(where, args...).
		UpdateColumn("position", gorm.Expr("position "+delta)).Error
	if err != nil {
		return apperr.Storage("shift "+key.String(), err)
	}
	return nil
}

func (s *Sequencer) set(tx *database.Tx, key GroupKey, spec groupSpec, item uuid.UUID, position int) error {
	err := s.scope(tx, key, spec).
		Where(spec.itemColumn+" = ?", item).
		UpdateColumn("position", position).Error
	if err != nil {
		return apperr.Storage("place "+key.String(), err)
	}
	return nil
}

// Members returns the placed items of a group in order.
func (s *Sequencer) Members(tx *database.Tx, key GroupKey) ([]uuid.UUID, error) {
	spec, err := key.spec()
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(tx, key, spec)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if r.Position >= 0 {
			ids = append(ids, r.Item)
		}
	}
	return ids, nil
}

// InsertAt places an existing, not yet placed row of the group at index.
// Members at index and after move up by one. index is clamped to
// [0, count]; Append or any index past the end appends.
func (s *Sequencer) InsertAt(tx *database.Tx, key GroupKey, item uuid.UUID, index int) (int, error) {
	spec, err := s.begin(tx, key)
	if err != nil {
		return 0, err
	}
	rows, err := s.rows(tx, key, spec)
	if err != nil {
		return 0, err
	}

	r, ok := find(rows, item)
	if !ok {
		return 0, apperr.NotFound(spec.entity, item)
	}
	if r.Position >= 0 {
		return 0, apperr.InvalidOrdering(spec.entity, item, "already placed in "+key.String())
	}

	count := placedCount(rows)
	if index < 0 {
		index = 0
	}
	if index > count {
		index = count
	}

	if index < count {
		if err := s.shift(tx, key, spec, "+ 1", "position >= ?", index); err != nil {
			return 0, err
		}
	}
	if err := s.set(tx, key, spec, item, index); err != nil {
		return 0, err
	}
	return index, nil
}

// RemoveFrom vacates item's slot and closes the gap. The row itself stays,
// unplaced; deleting it is the caller's job.
func (s *Sequencer) RemoveFrom(tx *database.Tx, key GroupKey, item uuid.UUID) (int, error) {
	spec, err := s.begin(tx, key)
	if err != nil {
		return 0, err
	}
	rows, err := s.rows(tx, key, spec)
	if err != nil {
		return 0, err
	}

	r, ok := find(rows, item)
	if !ok || r.Position < 0 {
		return 0, apperr.NotFound(spec.entity, item)
	}

	if err := s.set(tx, key, spec, item, content.Unplaced); err != nil {
		return 0, err
	}
	if err := s.shift(tx, key, spec, "- 1", "position > ?", r.Position); err != nil {
		return 0, err
	}
	return r.Position, nil
}

// MoveWithin moves item to newIndex, clamped to [0, count-1]. Only the members
// between the old and new slot shift; moving to the current slot is a no-op.
func (s *Sequencer) MoveWithin(tx *database.Tx, key GroupKey, item uuid.UUID, newIndex int) (int, error) {
	spec, err := s.begin(tx, key)
	if err != nil {
		return 0, err
	}
	rows, err := s.rows(tx, key, spec)
	if err != nil {
		return 0, err
	}

	r, ok := find(rows, item)
	if !ok || r.Position < 0 {
		return 0, apperr.NotFound(spec.entity, item)
	}

	count := placedCount(rows)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > count-1 {
		newIndex = count - 1
	}

	current := r.Position
	switch {
	case newIndex == current:
		return current, nil
	case newIndex < current:
		err = s.shift(tx, key, spec, "+ 1", "position >= ? AND position < ?", newIndex, current)
	default:
		err = s.shift(tx, key, spec, "- 1", "position > ? AND position <= ?", current, newIndex)
	}
	if err != nil {
		return 0, err
	}
	if err := s.set(tx, key, spec, item, newIndex); err != nil {
		return 0, err
	}
	return newIndex, nil
}

// ReindexFromScratch replaces the whole ordering. ordered must be a
// permutation of the group's current rows, placed or not.
func (s *Sequencer) ReindexFromScratch(tx *database.Tx, key GroupKey, ordered []uuid.UUID) error {
	spec, err := s.begin(tx, key)
	if err != nil {
		return err
	}
	rows, err := s.rows(tx, key, spec)
	if err != nil {
		return err
	}

	if err := checkPermutation(rows, ordered); err != nil {
		return apperr.InvalidOrdering(string(key.Kind), key.ParentID, err.Error())
	}

	current := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		current[r.Item] = r.Position
	}
	for i, id := range ordered {
		if current[id] == i {
			continue
		}
		if err := s.set(tx, key, spec, id, i); err != nil {
			return err
		}
	}
	return nil
}

func checkPermutation(rows []row, ordered []uuid.UUID) error {
	if len(ordered) != len(rows) {
		return fmt.Errorf("got %d ids, group has %d members", len(ordered), len(rows))
	}
	members := make(map[uuid.UUID]bool, len(rows))
	for _, r := range rows {
		members[r.Item] = false
	}
	for _, id := range ordered {
		seen, ok := members[id]
		if !ok {
			return fmt.Errorf("%s is not a member", id)
		}
		if seen {
			return fmt.Errorf("%s appears more than once", id)
		}
		members[id] = true
	}
	return nil
}

// Violation describes a group whose positions are not a dense 0..n-1 sequence.
type Violation struct {
	Key       GroupKey `json:"-"`
	Group     string   `json:"group"`
	Positions []int    `json:"positions"`
	Unplaced  int      `json:"unplaced"`
}

// Verify checks a group for density without locking it.
func (s *Sequencer) Verify(tx *database.Tx, key GroupKey) (*Violation, error) {
	spec, err := key.spec()
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(tx, key, spec)
	if err != nil {
		return nil, err
	}

	v := &Violation{Key: key, Group: key.String()}
	dense := true
	for i, r := range rows {
		if r.Position < 0 {
			v.Unplaced++
			dense = false
			continue
		}
		v.Positions = append(v.Positions, r.Position)
		if r.Position != i {
			dense = false
		}
	}
	if dense {
		return nil, nil
	}
	return v, nil
}

// Compact renumbers a group 0..n-1 keeping its current relative order and
// appending unplaced rows. It reports whether anything changed.
func (s *Sequencer) Compact(tx *database.Tx, key GroupKey) (bool, error) {
	spec, err := s.begin(tx, key)
	if err != nil {
		return false, err
	}
	rows, err := s.rows(tx, key, spec)
	if err != nil {
		return false, err
	}

	changed := false
	for i, r := range rows {
		if r.Position == i {
			continue
		}
		if err := s.set(tx, key, spec, r.Item, i); err != nil {
			return false, err
		}
		changed = true
	}
	if changed {
		s.log.Warn("compacted sibling group", "group", key.String(), "members", len(rows))
	}
	return changed, nil
}

// Groups lists every group of kind that has at least one row.
func (s *Sequencer) Groups(tx *database.Tx, kind Kind) ([]GroupKey, error) {
	spec, err := GroupKey{Kind: kind}.spec()
	if err != nil {
		return nil, err
	}
	var parents []uuid.UUID
	if err := tx.DB.Table(spec.table).Distinct(spec.parentColumn).Pluck(spec.parentColumn, &parents).Error; err != nil {
		return nil, apperr.Storage("list groups "+string(kind), err)
	}
	keys := make([]GroupKey, len(parents))
	for i, p := range parents {
		keys[i] = GroupKey{Kind: kind, ParentID: p}
	}
	return keys, nil
}

// IsNotFound reports whether err is the sequencer's missing-member error.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
