package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/postgres/generated"
	"github.com/iho/leaveledger/internal/usecase"
)

var errForeignTransaction = errors.New("transaction was not started by the postgres transaction manager")

// txQueries binds the generated queries to tx.
func txQueries(tx usecase.Transaction) (*generated.Queries, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, errForeignTransaction
	}
	return generated.New(t.PgxTx()), nil
}

// Day amounts are stored as NUMERIC days with one decimal place.
func halfDaysToNumeric(h domain.HalfDays) pgtype.Numeric {
	return decimalToNumeric(h.Days())
}

func numericToHalfDays(n pgtype.Numeric) domain.HalfDays {
	return domain.HalfDaysFromDays(numericToDecimal(n))
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func timestamptzPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func dateToPg(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.StartOfDay(t), Valid: true}
}

func optionalDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return dateToPg(*t)
}

func pgToDate(d pgtype.Date) time.Time {
	return domain.StartOfDay(d.Time)
}

func textFromPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
