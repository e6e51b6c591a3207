package consts

const (
	// LamportsPerSol 表示 1 SOL 对应的 lamport 数
	LamportsPerSol uint64 = 1_000_000_000
)
