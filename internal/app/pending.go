package app

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pending tracks one optimistic mutation between its local apply and the
// remote confirmation. Failing a pending mutation deliberately leaves the
// optimistic state in place: there is no compensating rollback, the cache
// stays possibly ahead of the authority until the next full reload.
type pending struct {
	Token    uuid.UUID
	Op       string
	EntityID int
}

// begin records that an optimistic update was applied locally.
func (a *App) begin(op string, entityID int) pending {
	p := pending{Token: uuid.New(), Op: op, EntityID: entityID}
	a.log.Debug("optimistic update applied",
		zap.String("op", op),
		zap.Int("entity_id", entityID),
		zap.String("token", p.Token.String()),
	)
	return p
}

// commit marks the optimistic update as confirmed by the authority.
func (a *App) commit(p pending) {
	a.log.Debug("optimistic update confirmed",
		zap.String("op", p.Op),
		zap.Int("entity_id", p.EntityID),
		zap.String("token", p.Token.String()),
	)
}

// fail records that the persist step did not complete. The local state is
// kept as-is; reloading the board is the recovery mechanism.
func (a *App) fail(p pending, err error) {
	a.log.Error("optimistic update not persisted, local state retained",
		zap.String("op", p.Op),
		zap.Int("entity_id", p.EntityID),
		zap.String("token", p.Token.String()),
		zap.Error(err),
	)
}
