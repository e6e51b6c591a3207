package escrow

import (
	"encoding/binary"
	"fmt"
)

// 指令 tag（首字节）
const (
	TagInit     byte = 0
	TagExchange byte = 1
	TagCancel   byte = 2
)

// Instruction 是解码后的 escrow 指令。
// Init / Exchange 携带 8 字节小端 uint64 金额，Cancel 无负载。
type Instruction struct {
	Tag    byte
	Amount uint64
}

// UnpackInstruction 解析原始指令数据。
// tag 未知或负载长度不足时返回 ErrInvalidInstruction。
func UnpackInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return Instruction{}, ErrInvalidInstruction
	}

	switch data[0] {
	case TagInit, TagExchange:
		if len(data) < 9 {
			return Instruction{}, fmt.Errorf("%w: payload too short for tag %d", ErrInvalidInstruction, data[0])
		}
		return Instruction{
			Tag:    data[0],
			Amount: binary.LittleEndian.Uint64(data[1:9]),
		}, nil

	case TagCancel:
		return Instruction{Tag: TagCancel}, nil

	default:
		return Instruction{}, fmt.Errorf("%w: unknown tag %d", ErrInvalidInstruction, data[0])
	}
}

// PackInitInstruction 编码 Init 指令（客户端/测试侧使用）
func PackInitInstruction(expectedAmount uint64) []byte {
	return packAmountInstruction(TagInit, expectedAmount)
}

// PackExchangeInstruction 编码 Exchange 指令
func PackExchangeInstruction(amount uint64) []byte {
	return packAmountInstruction(TagExchange, amount)
}

// PackCancelInstruction 编码 Cancel 指令
func PackCancelInstruction() []byte {
	return []byte{TagCancel}
}

func packAmountInstruction(tag byte, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = tag
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return data
}
