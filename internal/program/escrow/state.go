package escrow

import (
	"encoding/binary"

	"escrow-program-sol/internal/types"
)

// AccountSize escrow 记录的固定序列化长度：
// initialized(1) | initializer(32) | temp_account(32) | receive_account(32) | expected_amount(8 LE)
const AccountSize = 105

// Escrow 表示一笔在途交换的持久化记录。
// 记录只在 Init 中写入，由 Exchange 或 Cancel 中的一方销毁（清零），且恰好一次。
// 程序不跨调用持有记录 —— 每次 attempt 从账户数据重新还原。
type Escrow struct {
	Initialized    bool
	Initializer    types.Pubkey // 可取消方，交换结果的受益人
	TempAccount    types.Pubkey // 托管被出让资产的临时账户
	ReceiveAccount types.Pubkey // initializer 希望收到对手资产的账户
	ExpectedAmount uint64       // 成交所需的对手资产数量
}

func (e *Escrow) IsInitialized() bool {
	return e.Initialized
}

// Pack 将记录写入账户数据缓冲区
func (e *Escrow) Pack(buf []byte) error {
	if len(buf) < AccountSize {
		return ErrInvalidAccountData
	}
	if e.Initialized {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	copy(buf[1:33], e.Initializer[:])
	copy(buf[33:65], e.TempAccount[:])
	copy(buf[65:97], e.ReceiveAccount[:])
	binary.LittleEndian.PutUint64(buf[97:105], e.ExpectedAmount)
	return nil
}

// UnpackEscrow 从账户数据还原记录（不校验 initialized，调用方自行判断）
func UnpackEscrow(data []byte) (Escrow, error) {
	if len(data) < AccountSize {
		return Escrow{}, ErrInvalidAccountData
	}
	var e Escrow
	e.Initialized = data[0] != 0
	copy(e.Initializer[:], data[1:33])
	copy(e.TempAccount[:], data[33:65])
	copy(e.ReceiveAccount[:], data[65:97])
	e.ExpectedAmount = binary.LittleEndian.Uint64(data[97:105])
	return e, nil
}
