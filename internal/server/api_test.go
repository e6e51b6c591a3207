package server

import (
	"encoding/base64"
	"testing"

	"escrow-program-sol/internal/program/escrow"
	"escrow-program-sol/internal/types"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b58(seed byte) string {
	var b [32]byte
	for i := range b {
		b[i] = seed
	}
	return base58.Encode(b[:])
}

func TestBuildTransaction(t *testing.T) {
	req := &SubmitTxRequest{
		Signature: b58(100),
		Signers:   []string{b58(1)},
		Instructions: []InstructionBody{{
			ProgramID: b58(200),
			Accounts: []AccountMetaBody{
				{Pubkey: b58(1), Signer: true, Writable: false},
				{Pubkey: b58(2), Writable: true},
			},
			Data: base64.StdEncoding.EncodeToString(escrow.PackInitInstruction(50)),
		}},
	}

	tx, err := buildTransaction(req)
	require.NoError(t, err)

	var wantSig types.Hash
	for i := range wantSig {
		wantSig[i] = 100
	}
	assert.Equal(t, wantSig, tx.Signature)
	require.Len(t, tx.Signers, 1)
	require.Len(t, tx.Instructions, 1)

	ix := tx.Instructions[0]
	require.Len(t, ix.Accounts, 2)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.False(t, ix.Accounts[0].IsWritable)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.Equal(t, escrow.PackInitInstruction(50), ix.Data)
}

func TestBuildTransaction_Invalid(t *testing.T) {
	// 非法签名
	_, err := buildTransaction(&SubmitTxRequest{
		Signature:    "bad!sig",
		Instructions: []InstructionBody{{ProgramID: b58(1)}},
	})
	assert.Error(t, err)

	// 空指令列表
	_, err = buildTransaction(&SubmitTxRequest{Signature: b58(9)})
	assert.Error(t, err)

	// data 不是合法 base64
	_, err = buildTransaction(&SubmitTxRequest{
		Signature: b58(9),
		Instructions: []InstructionBody{{
			ProgramID: b58(1),
			Data:      "%%%not-base64%%%",
		}},
	})
	assert.Error(t, err)
}
