package uom_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/uom"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTable_Convert(t *testing.T) {
	t.Parallel()

	tbl := uom.Default()

	cases := []struct {
		name     string
		qty      string
		from, to string
		want     string
	}{
		{"same unit", "3.5", "kg", "kg", "3.5"},
		{"kg to g", "1.25", "kg", "g", "1250"},
		{"lb to kg", "10", "lb", "kg", "4.5359237"},
		{"oz to lb", "32", "oz", "lb", "2"},
		{"dozen to unit", "2", "dozen", "unit", "24"},
		{"in to cm", "10", "in", "cm", "25.4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tbl.Convert(d(tc.qty), tc.from, tc.to)
			require.NoError(t, err)
			require.True(t, d(tc.want).Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestTable_Convert_Errors(t *testing.T) {
	t.Parallel()

	tbl := uom.Default()

	_, err := tbl.Convert(decimal.NewFromInt(1), "kg", "cm")
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = tbl.Convert(decimal.NewFromInt(1), "stone", "kg")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = tbl.Convert(decimal.NewFromInt(1), "kg", "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
