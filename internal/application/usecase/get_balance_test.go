package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balanced.io/internal/domain/entity"
)

func TestGetBalanceUseCase_Execute(t *testing.T) {
	tests := []struct {
		name        string
		balance     entity.Balance
		readErr     error
		resolveErr  error
		wantErr     error
		wantFree    uint64
		wantLock    uint64
		wantRelease int
	}{
		{
			name:        "successful balance retrieval",
			balance:     entity.Balance{Free: 70, Lock: 30},
			wantFree:    70,
			wantLock:    30,
			wantRelease: 1,
		},
		{
			name:        "zero balance",
			wantRelease: 1,
		},
		{
			name:       "unknown account",
			resolveErr: fmt.Errorf("%w: bob", entity.ErrAccountNotFound),
			wantErr:    entity.ErrAccountNotFound,
		},
		{
			name:        "store failure while reloading",
			readErr:     fmt.Errorf("%w: %w", entity.ErrStoreUnavailable, errStoreDown),
			wantErr:     entity.ErrStoreUnavailable,
			wantRelease: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &mockAccount{balance: tt.balance, readErr: tt.readErr}
			repository := &mockRepository{account: account, resolveErr: tt.resolveErr}
			observer := &recordingObserver{}

			useCase := NewGetBalanceUseCase[entity.AccountID](repository, observer)
			resp, err := useCase.Execute(context.Background(), entity.AccountID("alice"))

			assert.Equal(t, tt.wantRelease, account.released)
			assert.Equal(t, account.acquired, account.released)
			require.Len(t, observer.seen, 1)
			assert.Equal(t, "get", observer.seen[0].operation)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				assert.ErrorIs(t, observer.seen[0].err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "alice", resp.Account)
			assert.Empty(t, resp.Currency)
			assert.Equal(t, tt.wantFree, resp.Free)
			assert.Equal(t, tt.wantLock, resp.Lock)
		})
	}
}

func TestGetBalanceUseCase_NilObserver(t *testing.T) {
	repository := &mockRepository{account: &mockAccount{balance: entity.Balance{Free: 1}}}

	resp, err := NewGetBalanceUseCase[entity.AccountID](repository, nil).Execute(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp.Free)
}
