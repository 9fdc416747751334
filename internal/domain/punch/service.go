package punch

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// PunchService composes validation, schedule matching and storage.
type PunchService interface {
	// Record resolves a request into a candidate, filling a missing date or
	// start time from the clock, and adds it in its own unit of work.
	Record(ctx context.Context, req AddPunchRequest) (PunchResponse, error)

	// Add validates, matches and inserts c in its own unit of work.
	Add(ctx context.Context, c Candidate) (Punch, error)

	// AddTx does the same inside tx and never commits. excludePunchID is left
	// out of validation and window consumption.
	AddTx(ctx context.Context, tx pgx.Tx, c Candidate, excludePunchID *int64) (Punch, error)

	MarkSupersededBy(ctx context.Context, tx pgx.Tx, oldID, newID int64, actor int64) (bool, error)
	MarkDeleted(ctx context.Context, tx pgx.Tx, id int64, actor int64) (bool, error)

	// Finalize fills the end time of the user's open punch.
	Finalize(ctx context.Context, req FinalizeRequest) (PunchResponse, error)

	List(ctx context.Context, req ListPunchesRequest) (ListPunchesResponse, error)
	Recent(ctx context.Context, userID int64) (ListPunchesResponse, error)
}
