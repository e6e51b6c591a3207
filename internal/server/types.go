package server

// AccountMetaBody 是提交交易时的账户引用
type AccountMetaBody struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer,optional"`
	Writable bool   `json:"writable,optional"`
}

// InstructionBody 是提交交易时的单条指令，Data 为 base64 编码
type InstructionBody struct {
	ProgramID string            `json:"program_id"`
	Accounts  []AccountMetaBody `json:"accounts"`
	Data      string            `json:"data"`
}

// SubmitTxRequest 对应 POST /v1/transactions
type SubmitTxRequest struct {
	Signature    string            `json:"signature"` // base58，32 字节
	Signers      []string          `json:"signers,optional"`
	Instructions []InstructionBody `json:"instructions"`
}

// SubmitTxResponse 返回交易的执行结果
type SubmitTxResponse struct {
	Signature string `json:"signature"`
	Status    string `json:"status"` // ok / failed
	Error     string `json:"error,omitempty"`
}

// EscrowBody 是一笔托管的查询视图
type EscrowBody struct {
	Record         string `json:"record"`
	Status         string `json:"status"`
	Initializer    string `json:"initializer,omitempty"`
	TempAccount    string `json:"temp_account,omitempty"`
	ReceiveAccount string `json:"receive_account,omitempty"`
	ExpectedAmount uint64 `json:"expected_amount,omitempty"`
	CreatedAt      int64  `json:"created_at,omitempty"`
}

// ListEscrowsResponse 对应 GET /v1/escrows
type ListEscrowsResponse struct {
	Total   int          `json:"total"`
	Escrows []EscrowBody `json:"escrows"`
}

// AddressRequest 是带路径参数的查询请求
type AddressRequest struct {
	Address string `path:"address"`
}

// TokenAccountBody 是 token 账户数据的解码视图
type TokenAccountBody struct {
	Mint   string `json:"mint"`
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

// AccountResponse 对应 GET /v1/accounts/:address
type AccountResponse struct {
	Address  string            `json:"address"`
	Lamports uint64            `json:"lamports"`
	Owner    string            `json:"owner"`
	Data     string            `json:"data,omitempty"` // base64
	Token    *TokenAccountBody `json:"token,omitempty"`
}

// ErrorResponse 是统一的错误返回体
type ErrorResponse struct {
	Error string `json:"error"`
}
