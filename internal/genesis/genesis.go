package genesis

import (
	"fmt"
	"os"

	"escrow-program-sol/internal/consts"
	"escrow-program-sol/internal/program/token"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"

	"gopkg.in/yaml.v3"
)

// SystemAccount 是创世文件中的一条普通账户（只持有 lamports）
type SystemAccount struct {
	Pubkey   string `yaml:"pubkey"`
	Lamports uint64 `yaml:"lamports"`
}

// TokenAccount 是创世文件中的一条 SPL token 账户。
// lamports 为 0 时按租金豁免最低额填充。
type TokenAccount struct {
	Pubkey   string `yaml:"pubkey"`
	Mint     string `yaml:"mint"`
	Owner    string `yaml:"owner"`
	Amount   uint64 `yaml:"amount"`
	Lamports uint64 `yaml:"lamports"`
}

// Genesis 描述 bank 的初始账本状态
type Genesis struct {
	Accounts      []SystemAccount `yaml:"accounts"`
	TokenAccounts []TokenAccount  `yaml:"token_accounts"`
}

// Load 读取并解析创世文件
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("genesis: parse %s: %w", path, err)
	}
	return &g, nil
}

// Apply 将创世状态注入 bank，任一条目非法则整体失败
func (g *Genesis) Apply(bank *runtime.Bank) error {
	for i, acc := range g.Accounts {
		key, err := types.TryPubkeyFromBase58(acc.Pubkey)
		if err != nil {
			return fmt.Errorf("genesis: accounts[%d]: %w", i, err)
		}
		bank.SetAccount(key, &runtime.Account{
			Lamports: acc.Lamports,
			Owner:    consts.SystemProgram,
		})
	}

	rentMinimum := runtime.DefaultRent().MinimumBalance(token.AccountSize)
	for i, acc := range g.TokenAccounts {
		key, err := types.TryPubkeyFromBase58(acc.Pubkey)
		if err != nil {
			return fmt.Errorf("genesis: token_accounts[%d]: %w", i, err)
		}
		mint, err := types.TryPubkeyFromBase58(acc.Mint)
		if err != nil {
			return fmt.Errorf("genesis: token_accounts[%d].mint: %w", i, err)
		}
		owner, err := types.TryPubkeyFromBase58(acc.Owner)
		if err != nil {
			return fmt.Errorf("genesis: token_accounts[%d].owner: %w", i, err)
		}

		state := token.Account{Mint: mint, Owner: owner, Amount: acc.Amount, State: token.StateInitialized}
		data := make([]byte, token.AccountSize)
		if err := state.Pack(data); err != nil {
			return fmt.Errorf("genesis: token_accounts[%d]: %w", i, err)
		}

		lamports := acc.Lamports
		if lamports == 0 {
			lamports = rentMinimum
		}
		bank.SetAccount(key, &runtime.Account{
			Lamports: lamports,
			Data:     data,
			Owner:    consts.TokenProgram,
		})
	}
	return nil
}
