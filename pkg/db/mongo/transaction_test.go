package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func TestTransactionOptions(t *testing.T) {
	o := transactionOptions(WithMaxCommitTime(2 * time.Second))

	require.NotNil(t, o.ReadConcern)
	assert.Equal(t, "snapshot", o.ReadConcern.Level)
	require.NotNil(t, o.WriteConcern)
	assert.Equal(t, "majority", o.WriteConcern.W)
	assert.Equal(t, readpref.PrimaryMode, o.ReadPreference.Mode())
	require.NotNil(t, o.MaxCommitTime)
	assert.Equal(t, 2*time.Second, *o.MaxCommitTime)
}

func TestTransactionOptions_ZeroCommitTimeIgnored(t *testing.T) {
	o := transactionOptions(WithMaxCommitTime(0))
	assert.Nil(t, o.MaxCommitTime)
}

func TestIsTransactionsUnsupported(t *testing.T) {
	assert.True(t, isTransactionsUnsupported(mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}))
	assert.False(t, isTransactionsUnsupported(mongo.CommandError{Code: 112}))
	assert.False(t, isTransactionsUnsupported(errors.New("boom")))
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
