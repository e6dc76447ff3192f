package receipt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avense/inkdeploy/deploy"
	"github.com/avense/inkdeploy/types"
)

func TestFromResultSuccess(t *testing.T) {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(18 * time.Second)
	res := deploy.Result{
		Address:   types.AccountID{0xAA},
		BlockHash: types.Hash{0xBB},
	}

	r := FromResult("attempt-1", "payment_contract", "new", "0xcafe", started, finished, res)

	assert.True(t, r.Success)
	assert.Equal(t, res.Address.Hex(), r.Address)
	assert.Equal(t, res.BlockHash.Hex(), r.BlockHash)
	assert.Empty(t, r.ErrorKind)
	assert.Empty(t, r.Error)
}

func TestFromResultFailure(t *testing.T) {
	res := deploy.Result{
		Kind: deploy.KindRejected,
		Err:  deploy.DispatchError{Module: "Contracts", Reason: deploy.ReasonOutOfGas},
	}

	r := FromResult("attempt-2", "payment_contract", "new", "0xcafe", time.Now(), time.Now(), res)

	assert.False(t, r.Success)
	assert.Empty(t, r.Address)
	assert.Equal(t, "rejected", r.ErrorKind)
	assert.Contains(t, r.Error, deploy.ReasonOutOfGas)
}

func TestWriteRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	w := NewWriter(dir, nil)

	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r := FromResult("attempt-3", "payment_contract", "new", "0xcafe",
		started, started.Add(5*time.Second),
		deploy.Result{Address: types.AccountID{0x01}, BlockHash: types.Hash{0x02}},
	)

	path, err := w.Write(r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt-attempt-3.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Receipt
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, r.AttemptID, got.AttemptID)
	assert.Equal(t, r.Contract, got.Contract)
	assert.Equal(t, r.Address, got.Address)
	assert.Equal(t, r.BlockHash, got.BlockHash)
	assert.True(t, got.StartedAt.Equal(r.StartedAt))
	assert.True(t, got.FinishedAt.Equal(r.FinishedAt))
	assert.True(t, got.Success)
}
