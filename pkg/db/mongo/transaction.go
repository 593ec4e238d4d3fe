package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// ErrTransactionsUnsupported is returned when the deployment is a standalone server.
var ErrTransactionsUnsupported = errors.New("mongo transactions require a replica set or sharded cluster")

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type TxOption func(*options.TransactionOptions)

// WithMaxCommitTime bounds how long the server may spend committing.
func WithMaxCommitTime(d time.Duration) TxOption {
	return func(o *options.TransactionOptions) {
		if d > 0 {
			o.SetMaxCommitTime(&d)
		}
	}
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

// NewTransactionManager runs transactions on the primary with snapshot reads and majority writes.
func NewTransactionManager(client *mongo.Client, opts ...TxOption) TransactionManager {
	return &mongoTransactionManager{
		client: client,
		opts:   transactionOptions(opts...),
	}
}

func transactionOptions(opts ...TxOption) *options.TransactionOptions {
	o := options.Transaction().
		SetReadPreference(readpref.Primary()).
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ExecuteTransaction retries transient transaction errors through the driver and returns
// errors produced by fn with their identity intact.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	var fnErr error
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		fnErr = fn(sessCtx)
		return nil, fnErr
	}, m.opts)

	switch {
	case err == nil:
		return nil
	case fnErr != nil && errors.Is(err, fnErr):
		return fnErr
	case isTransactionsUnsupported(err):
		return fmt.Errorf("%w: %v", ErrTransactionsUnsupported, err)
	default:
		return fmt.Errorf("transaction failed: %w", err)
	}
}

// IllegalOperation (20) is what a standalone mongod answers to startTransaction.
func isTransactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == 20
}

// WithTimeout bounds ctx by timeout unless ctx is a SessionContext, which cannot be wrapped
// without detaching it from its transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
