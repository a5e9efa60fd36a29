package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgNumericToDecimal(t *testing.T) {
	var n pgtype.Numeric
	require.NoError(t, n.Scan("12.50"))

	d, err := pgNumericToDecimal(n)
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())
}

func TestPgNumericToDecimal_NullIsZero(t *testing.T) {
	// Fixed-type commission configs leave commission_percentage NULL;
	// resolving one must not fail the settlement transaction.
	d, err := pgNumericToDecimal(pgtype.Numeric{Valid: false})
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestNullText(t *testing.T) {
	assert.False(t, nullText("").Valid)

	nt := nullText("BCA")
	assert.True(t, nt.Valid)
	assert.Equal(t, "BCA", nt.String)
}

func TestNullTimestamptz(t *testing.T) {
	assert.False(t, nullTimestamptz(nil).Valid)
	assert.Nil(t, timePtr(pgtype.Timestamptz{Valid: false}))

	now := time.Now()
	ts := nullTimestamptz(&now)
	assert.True(t, ts.Valid)
	require.NotNil(t, timePtr(ts))
	assert.Equal(t, now, *timePtr(ts))
}
