package utils

import (
	"encoding/binary"
	"fmt"

	"github.com/near/borsh-go"
)

// EncodeEvent 将事件体编码为带类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 borsh 序列化的事件体
func EncodeEvent(eventType uint32, payload any) ([]byte, error) {
	body, err := borsh.Serialize(payload)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: serialize %T: %w", payload, err)
	}

	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf[:4], eventType)
	return append(buf, body...), nil
}

// DecodeEventType 读取消息的 4 字节类型前缀，返回类型与剩余事件体
func DecodeEventType(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, fmt.Errorf("DecodeEventType: message too short: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint32(data[:4]), data[4:], nil
}
