package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside one database transaction and hands the
// transaction handle to fn as tx.
//
// Repositories accept the handle through their tx argument and must also
// accept NoTX, in which case they run on the pool outside any transaction.
// The concrete type of tx is infra-defined (pgx.Tx for Postgres).
//
// fn returning an error rolls the transaction back; otherwise it is committed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
