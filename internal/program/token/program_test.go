package token_test

import (
	"math"
	"testing"

	"escrow-program-sol/internal/consts"
	"escrow-program-sol/internal/program/token"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pk(seed byte) types.Pubkey {
	var p types.Pubkey
	for i := range p {
		p[i] = seed
	}
	return p
}

// tokenEnv token 引擎测试环境：bank + 预置账户
type tokenEnv struct {
	bank  *runtime.Bank
	mint  types.Pubkey
	alice types.Pubkey
	bob   types.Pubkey
	accA  types.Pubkey
	accB  types.Pubkey
	txSeq byte
}

func newTokenEnv(t *testing.T) *tokenEnv {
	t.Helper()
	env := &tokenEnv{
		bank:  runtime.NewBank(),
		mint:  pk(90),
		alice: pk(1),
		bob:   pk(2),
		accA:  pk(11),
		accB:  pk(12),
	}
	env.bank.RegisterProgram(consts.TokenProgram, token.NewEngine())
	env.setTokenAccount(env.accA, env.alice, 1000)
	env.setTokenAccount(env.accB, env.bob, 0)
	return env
}

func (env *tokenEnv) setTokenAccount(key, owner types.Pubkey, amount uint64) {
	acc := token.Account{Mint: env.mint, Owner: owner, Amount: amount, State: token.StateInitialized}
	data := make([]byte, token.AccountSize)
	_ = acc.Pack(data)
	env.bank.SetAccount(key, &runtime.Account{Lamports: 2_039_280, Data: data, Owner: consts.TokenProgram})
}

func (env *tokenEnv) submit(signers []types.Pubkey, ix runtime.Instruction) error {
	env.txSeq++
	var sig types.Hash
	sig[0] = env.txSeq
	return env.bank.ExecuteTransaction(&runtime.Transaction{
		Signature:    sig,
		Signers:      signers,
		Instructions: []runtime.Instruction{ix},
	})
}

func (env *tokenEnv) balance(t *testing.T, key types.Pubkey) uint64 {
	t.Helper()
	acc, ok := env.bank.GetAccount(key)
	require.True(t, ok)
	state, err := token.UnpackAccount(acc.Data)
	require.NoError(t, err)
	return state.Amount
}

func TestTransfer(t *testing.T) {
	env := newTokenEnv(t)

	ix := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.alice, 300)
	require.NoError(t, env.submit([]types.Pubkey{env.alice}, ix))

	assert.Equal(t, uint64(700), env.balance(t, env.accA))
	assert.Equal(t, uint64(300), env.balance(t, env.accB))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	env := newTokenEnv(t)

	ix := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.alice, 1001)
	err := env.submit([]types.Pubkey{env.alice}, ix)
	assert.ErrorIs(t, err, token.ErrInsufficientFunds)
}

func TestTransfer_OwnerMismatch(t *testing.T) {
	env := newTokenEnv(t)

	// bob 不是 accA 的持有者
	ix := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.bob, 10)
	err := env.submit([]types.Pubkey{env.bob}, ix)
	assert.ErrorIs(t, err, token.ErrOwnerMismatch)
}

func TestTransfer_DestOverflow(t *testing.T) {
	env := newTokenEnv(t)
	env.setTokenAccount(env.accB, env.bob, math.MaxUint64)

	ix := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.alice, 1)
	err := env.submit([]types.Pubkey{env.alice}, ix)
	assert.ErrorIs(t, err, token.ErrAmountOverflow)
}

func TestTransfer_SelfTransfer(t *testing.T) {
	env := newTokenEnv(t)

	// source == dest：校验照常执行，余额保持不变（不得凭空铸币）
	ix := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accA, env.alice, 500)
	require.NoError(t, env.submit([]types.Pubkey{env.alice}, ix))
	assert.Equal(t, uint64(1000), env.balance(t, env.accA), "自转账后余额必须不变")

	// 超出余额的自转账照样拒绝
	ix = token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accA, env.alice, 1001)
	err := env.submit([]types.Pubkey{env.alice}, ix)
	assert.ErrorIs(t, err, token.ErrInsufficientFunds)
}

func TestTransfer_MintMismatch(t *testing.T) {
	env := newTokenEnv(t)

	// accB 换成另一种 mint
	other := token.Account{Mint: pk(91), Owner: env.bob, State: token.StateInitialized}
	data := make([]byte, token.AccountSize)
	_ = other.Pack(data)
	env.bank.SetAccount(env.accB, &runtime.Account{Lamports: 1, Data: data, Owner: consts.TokenProgram})

	ix := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.alice, 10)
	err := env.submit([]types.Pubkey{env.alice}, ix)
	assert.ErrorIs(t, err, token.ErrInvalidAccountData)
}

func TestSetAuthority(t *testing.T) {
	env := newTokenEnv(t)

	ix := token.NewSetAuthorityInstruction(consts.TokenProgram, env.accA, env.bob, env.alice)
	require.NoError(t, env.submit([]types.Pubkey{env.alice}, ix))

	acc, ok := env.bank.GetAccount(env.accA)
	require.True(t, ok)
	state, err := token.UnpackAccount(acc.Data)
	require.NoError(t, err)
	assert.Equal(t, env.bob, state.Owner, "持有权应移交给新 authority")

	// 旧持有者不再有权转账
	transfer := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.alice, 1)
	err = env.submit([]types.Pubkey{env.alice}, transfer)
	assert.ErrorIs(t, err, token.ErrOwnerMismatch)
}

func TestCloseAccount(t *testing.T) {
	env := newTokenEnv(t)

	// 清空余额后才能关闭
	drain := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.alice, 1000)
	require.NoError(t, env.submit([]types.Pubkey{env.alice}, drain))

	aliceBefore := uint64(0)
	if acc, ok := env.bank.GetAccount(env.alice); ok {
		aliceBefore = acc.Lamports
	}

	closeIx := token.NewCloseAccountInstruction(consts.TokenProgram, env.accA, env.alice, env.alice)
	require.NoError(t, env.submit([]types.Pubkey{env.alice}, closeIx))

	_, ok := env.bank.GetAccount(env.accA)
	assert.False(t, ok, "关闭后的账户应被回收")

	acc, ok := env.bank.GetAccount(env.alice)
	require.True(t, ok)
	assert.Equal(t, aliceBefore+2_039_280, acc.Lamports, "押金应退还 dest")
}

func TestCloseAccount_SelfDestination(t *testing.T) {
	env := newTokenEnv(t)

	drain := token.NewTransferInstruction(consts.TokenProgram, env.accA, env.accB, env.alice, 1000)
	require.NoError(t, env.submit([]types.Pubkey{env.alice}, drain))

	// 押金退给被关闭账户本身 → 随清零一起蒸发，必须拒绝
	closeIx := token.NewCloseAccountInstruction(consts.TokenProgram, env.accA, env.accA, env.alice)
	err := env.submit([]types.Pubkey{env.alice}, closeIx)
	assert.ErrorIs(t, err, token.ErrInvalidAccountData)

	acc, ok := env.bank.GetAccount(env.accA)
	require.True(t, ok, "拒绝后账户应原样保留")
	assert.Equal(t, uint64(2_039_280), acc.Lamports)
}

func TestCloseAccount_NonZeroBalance(t *testing.T) {
	env := newTokenEnv(t)

	ix := token.NewCloseAccountInstruction(consts.TokenProgram, env.accA, env.alice, env.alice)
	err := env.submit([]types.Pubkey{env.alice}, ix)
	assert.ErrorIs(t, err, token.ErrNonZeroBalance)
}

func TestExecute_InvalidInstruction(t *testing.T) {
	env := newTokenEnv(t)

	err := env.submit(nil, runtime.Instruction{
		ProgramID: consts.TokenProgram,
		Accounts:  []runtime.AccountMeta{{Pubkey: env.accA}},
		Data:      []byte{255},
	})
	assert.ErrorIs(t, err, token.ErrInvalidInstruction)
}

func TestUnpackAccount_RoundTrip(t *testing.T) {
	acc := token.Account{Mint: pk(5), Owner: pk(6), Amount: 777, State: token.StateInitialized}
	buf := make([]byte, token.AccountSize)
	require.NoError(t, acc.Pack(buf))

	decoded, err := token.UnpackAccount(buf)
	require.NoError(t, err)
	assert.Equal(t, acc, decoded)

	_, err = token.UnpackAccount(buf[:100])
	assert.ErrorIs(t, err, token.ErrInvalidAccountData)
}
