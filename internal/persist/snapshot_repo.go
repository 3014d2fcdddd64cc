package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rtype/engine/internal/core/ecs"
)

// ErrNoSnapshot is returned by LoadLatest when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes every live entity of reg, in creation order, with all of its
// components as one snapshot. The whole snapshot is a single transaction.
func (r *SnapshotRepo) Save(ctx context.Context, tick uint64, reg *ecs.Registry) (int64, error) {
	ids := reg.GetEntitiesWith()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var snapshotID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO snapshots (tick, entity_count) VALUES ($1, $2) RETURNING id`,
		int64(tick), len(ids),
	).Scan(&snapshotID); err != nil {
		return 0, fmt.Errorf("snapshot insert: %w", err)
	}

	batch := &pgx.Batch{}
	for seq, id := range ids {
		batch.Queue(
			`INSERT INTO snapshot_entities (snapshot_id, seq, entity_id) VALUES ($1, $2, $3)`,
			snapshotID, seq, int64(id),
		)
		for _, kind := range reg.Kinds(id) {
			c, _ := reg.GetComponent(id, kind)
			name, body, err := EncodeComponent(c)
			if err != nil {
				return 0, fmt.Errorf("snapshot entity %d: %w", id, err)
			}
			batch.Queue(
				`INSERT INTO snapshot_components (snapshot_id, entity_id, kind, body) VALUES ($1, $2, $3, $4)`,
				snapshotID, int64(id), name, body,
			)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("snapshot rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("snapshot commit: %w", err)
	}
	return snapshotID, nil
}

// LoadLatest recreates the most recent snapshot inside reg. Entities are
// created in their saved order; the returned map translates saved IDs to
// the IDs reg assigned.
func (r *SnapshotRepo) LoadLatest(ctx context.Context, reg *ecs.Registry) (uint64, map[ecs.EntityID]ecs.EntityID, error) {
	var (
		snapshotID int64
		tick       int64
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, tick FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&snapshotID, &tick)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, ErrNoSnapshot
	}
	if err != nil {
		return 0, nil, fmt.Errorf("snapshot lookup: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT entity_id FROM snapshot_entities WHERE snapshot_id = $1 ORDER BY seq`,
		snapshotID,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("snapshot entities: %w", err)
	}
	saved, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, nil, fmt.Errorf("snapshot entities: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx,
		`SELECT entity_id, kind, body FROM snapshot_components WHERE snapshot_id = $1`,
		snapshotID,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("snapshot components: %w", err)
	}
	defer rows.Close()

	var stored []StoredComponent
	for rows.Next() {
		var (
			sc StoredComponent
			id int64
		)
		if err := rows.Scan(&id, &sc.Kind, &sc.Body); err != nil {
			return 0, nil, fmt.Errorf("snapshot component scan: %w", err)
		}
		sc.Entity = ecs.EntityID(id)
		stored = append(stored, sc)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("snapshot components: %w", err)
	}

	order := make([]ecs.EntityID, len(saved))
	for i, id := range saved {
		order[i] = ecs.EntityID(id)
	}
	remap, err := Restore(reg, order, stored)
	if err != nil {
		return 0, nil, err
	}
	return uint64(tick), remap, nil
}

// StoredComponent is one snapshot_components row.
type StoredComponent struct {
	Entity ecs.EntityID
	Kind   string
	Body   []byte
}

// Restore recreates the saved entities in order with their components and
// returns the saved → new ID mapping. Every row is decoded before reg is
// touched, so on error reg is left unchanged.
func Restore(reg *ecs.Registry, order []ecs.EntityID, stored []StoredComponent) (map[ecs.EntityID]ecs.EntityID, error) {
	comps := make(map[ecs.EntityID][]ecs.Component, len(order))
	for _, old := range order {
		comps[old] = nil
	}
	for _, sc := range stored {
		if _, ok := comps[sc.Entity]; !ok {
			return nil, fmt.Errorf("snapshot component for unsaved entity %d", sc.Entity)
		}
		c, err := DecodeComponent(sc.Kind, sc.Body)
		if err != nil {
			return nil, fmt.Errorf("snapshot entity %d: %w", sc.Entity, err)
		}
		comps[sc.Entity] = append(comps[sc.Entity], c)
	}

	remap := make(map[ecs.EntityID]ecs.EntityID, len(order))
	for _, old := range order {
		id := reg.CreateEntity()
		remap[old] = id
		for _, c := range comps[old] {
			if err := reg.AddComponent(id, c); err != nil {
				return remap, err
			}
		}
	}
	return remap, nil
}
