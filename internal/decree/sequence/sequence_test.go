package sequence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	july := time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		seq      int
		want     string
	}{
		{"documented example", "{NOMOR}/SK/{BL_ROMA}/{TH}", 7, "0007/SK/VII/2025"},
		{"aliases share values", "{NO}-{SEQ}/{ROMAWI}/{TAHUN}", 12, "0012-0012/VII/2025"},
		{"day and numeric month", "{NOMOR}/{TGL}.{BL}.{TH}", 1, "0001/03.7.2025"},
		{"lower-case tokens", "{nomor}/{bl_roma}/{th}", 3, "0003/VII/2025"},
		{"unknown token kept", "{NOMOR}/{UNIT}/{TH}", 5, "0005/{UNIT}/2025"},
		{"wide sequence", "{NOMOR}", 12345, "12345"},
		{"no tokens", "SK-TETAP", 1, "SK-TETAP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.seq, july))
		})
	}
}

func TestFormat_NoResubstitution(t *testing.T) {
	// The year value must not be read again as a token.
	got := Format("{TH}{NOMOR}", 1, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "20250001", got)
}

func TestRoman(t *testing.T) {
	want := []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}
	for m := 1; m <= 12; m++ {
		assert.Equal(t, want[m-1], Roman(m))
	}
	assert.Equal(t, "", Roman(0))
	assert.Equal(t, "", Roman(13))
}

func TestCursor_AdvancesOnlyOnCommit(t *testing.T) {
	c := NewCursor(40)
	assert.Equal(t, 40, c.Peek())

	c.Commit()
	assert.Equal(t, 41, c.Peek())

	// failed item: nothing committed, number reused
	assert.Equal(t, 41, c.Peek())
	c.Commit()

	assert.Equal(t, 42, c.Peek())
	assert.Equal(t, 2, c.Committed())
	assert.Equal(t, 40, c.Start())
}

func TestCursor_ClampsStart(t *testing.T) {
	assert.Equal(t, 1, NewCursor(0).Peek())
}

func TestRedisStore_Miniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "")
	ctx := context.Background()

	next, err := store.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	require.NoError(t, store.Save(ctx, 57))
	next, err = store.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 57, next)

	stored, err := mr.Get(DefaultCounterKey)
	require.NoError(t, err)
	assert.Equal(t, "57", stored)
}

func TestRedisStore_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "sk:next")
	ctx := context.Background()

	mock.ExpectGet("sk:next").SetErr(errors.New("connection refused"))
	_, err := store.Next(ctx)
	assert.ErrorContains(t, err, "read sequence counter")

	mock.ExpectGet("sk:next").SetVal("abc")
	_, err = store.Next(ctx)
	assert.ErrorContains(t, err, "not a number")

	mock.ExpectSet("sk:next", 9, time.Duration(0)).SetErr(errors.New("readonly"))
	assert.ErrorContains(t, store.Save(ctx, 9), "write sequence counter")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(0)
	next, _ := m.Next(context.Background())
	assert.Equal(t, 1, next)
	_ = m.Save(context.Background(), 8)
	next, _ = m.Next(context.Background())
	assert.Equal(t, 8, next)
}
