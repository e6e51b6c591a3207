package escrow

import (
	"testing"

	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAuthority_Deterministic(t *testing.T) {
	programID := types.PubkeyFromBytes([]byte{7, 7, 7, 7})

	pda1, bump1, err := DeriveAuthority(programID)
	require.NoError(t, err)
	pda2, bump2, err := DeriveAuthority(programID)
	require.NoError(t, err)

	assert.Equal(t, pda1, pda2, "同一程序的托管授权地址必须稳定")
	assert.Equal(t, bump1, bump2)
	assert.False(t, pda1.IsZero())
}

func TestDeriveAuthority_SeedsProveAuthority(t *testing.T) {
	programID := types.PubkeyFromBytes([]byte{7, 7, 7, 7})

	pda, bump, err := DeriveAuthority(programID)
	require.NoError(t, err)

	// seeds+bump 重新推导应命中同一地址 —— 这正是 InvokeSigned 的授权证明路径
	derived, err := runtime.CreateProgramAddress(AuthoritySignerSeeds(bump), programID)
	require.NoError(t, err)
	assert.Equal(t, pda, derived)
}

func TestDeriveAuthority_DiffersPerProgram(t *testing.T) {
	pdaA, _, err := DeriveAuthority(types.PubkeyFromBytes([]byte{1}))
	require.NoError(t, err)
	pdaB, _, err := DeriveAuthority(types.PubkeyFromBytes([]byte{2}))
	require.NoError(t, err)
	assert.NotEqual(t, pdaA, pdaB)
}
