package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"escrow-program-sol/internal/consts"
	"escrow-program-sol/internal/program/token"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisYaml = `
accounts:
  - pubkey: 29d2S7vB453rNYFdR5Ycwt7y9haRT5fwVwL9zTmBhfV2
    lamports: 5000000000

token_accounts:
  - pubkey: 4Ss5JMkXAD9Z7cktFEdrqeMuT6jGMF1pVozTyPHZ6zT4
    mint: 6k78AbasGMFFrhG95Pj6jQbqkVt7FQMhVgemxJovWKR6
    owner: 29d2S7vB453rNYFdR5Ycwt7y9haRT5fwVwL9zTmBhfV2
    amount: 1000
`

func writeGenesis(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndApply(t *testing.T) {
	g, err := Load(writeGenesis(t, genesisYaml))
	require.NoError(t, err)
	require.Len(t, g.Accounts, 1)
	require.Len(t, g.TokenAccounts, 1)

	bank := runtime.NewBank()
	require.NoError(t, g.Apply(bank))

	owner := types.PubkeyFromBase58("29d2S7vB453rNYFdR5Ycwt7y9haRT5fwVwL9zTmBhfV2")
	acc, ok := bank.GetAccount(owner)
	require.True(t, ok)
	assert.Equal(t, uint64(5_000_000_000), acc.Lamports)
	assert.Equal(t, consts.SystemProgram, acc.Owner)

	tokenKey := types.PubkeyFromBase58("4Ss5JMkXAD9Z7cktFEdrqeMuT6jGMF1pVozTyPHZ6zT4")
	tokenAcc, ok := bank.GetAccount(tokenKey)
	require.True(t, ok)
	assert.Equal(t, consts.TokenProgram, tokenAcc.Owner)

	state, err := token.UnpackAccount(tokenAcc.Data)
	require.NoError(t, err)
	assert.Equal(t, owner, state.Owner)
	assert.Equal(t, uint64(1000), state.Amount)

	// lamports 未指定时按租金豁免最低额填充
	assert.Equal(t, runtime.DefaultRent().MinimumBalance(token.AccountSize), tokenAcc.Lamports)
}

func TestApply_InvalidPubkey(t *testing.T) {
	g, err := Load(writeGenesis(t, `
accounts:
  - pubkey: not-base58!
    lamports: 1
`))
	require.NoError(t, err)

	err = g.Apply(runtime.NewBank())
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
