package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-browser/internal/filter"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

func TestFilterFlags_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   filterFlags
		want    string
		wantErr string
	}{
		{
			name:  "none",
			flags: filterFlags{},
			want:  "",
		},
		{
			name:  "category and range",
			flags: filterFlags{categories: []string{"Dairy"}, minPrice: "2", maxPrice: "20"},
			want:  "category=Dairy&min_price=2&max_price=20",
		},
		{
			name:  "sort is case insensitive",
			flags: filterFlags{sort: "PRICE_DESC", inStock: true},
			want:  "sort=price_desc&in_stock=true",
		},
		{
			name:    "bad price",
			flags:   filterFlags{minPrice: "cheap"},
			wantErr: "not a number",
		},
		{
			name:    "negative price",
			flags:   filterFlags{maxPrice: "-1"},
			wantErr: "must not be negative",
		},
		{
			name:    "unknown sort",
			flags:   filterFlags{sort: "popular"},
			wantErr: "unknown sort key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := filter.NewStore()
			err := tt.flags.apply(st)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter.Encode(st.Snapshot()))
		})
	}
}

func TestWaiter_MatchesRequestID(t *testing.T) {
	t.Parallel()

	w := newWaiter()
	page := &domain.ProductPage{TotalCount: 1}

	w.OnLoading(1)
	w.OnError(1, errors.New("stale"))
	w.OnResults(2, page)
	w.OnEmpty()

	got, err := w.wait(context.Background(), 2)
	require.NoError(t, err)
	assert.Same(t, page, got)
}

func TestWaiter_ContextDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newWaiter().wait(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
