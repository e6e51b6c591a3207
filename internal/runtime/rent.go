package runtime

import (
	"encoding/binary"
	"errors"
	"math"

	"escrow-program-sol/internal/consts"
)

// ErrInvalidRentSysvar 表示传入的账户不是合法的 rent sysvar
var ErrInvalidRentSysvar = errors.New("invalid rent sysvar account")

const (
	// accountStorageOverhead 表示账户元信息占用的额外计费字节数
	accountStorageOverhead = 128

	// RentSysvarSize rent sysvar 的序列化长度：u64 + f64 + u8
	RentSysvarSize = 17
)

// Rent 表示存储成本豁免策略：数据量越大，免回收所需的最低余额越高。
type Rent struct {
	LamportsPerByteYear uint64  // 每字节每年的租金（lamports）
	ExemptionThreshold  float64 // 预存多少年的租金即可豁免
	BurnPercent         uint8   // 租金销毁比例（本实现只保留字段，不参与计算）
}

// DefaultRent 返回主网默认的租金参数
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
		BurnPercent:         50,
	}
}

// MinimumBalance 返回指定数据长度的账户达到豁免所需的最低余额
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(dataLen) + accountStorageOverhead
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt 判断账户当前余额是否满足豁免要求
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

// Pack 将 rent 参数序列化为 sysvar 账户数据
func (r Rent) Pack() []byte {
	buf := make([]byte, RentSysvarSize)
	binary.LittleEndian.PutUint64(buf[0:8], r.LamportsPerByteYear)
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(r.ExemptionThreshold))
	buf[16] = r.BurnPercent
	return buf
}

// RentFromAccountInfo 从调用方按位置提供的 sysvar 账户还原租金参数。
// 账户 Key 必须是 SysvarRent，数据长度必须完整。
func RentFromAccountInfo(info *AccountInfo) (Rent, error) {
	if info.Key != consts.SysvarRent {
		return Rent{}, ErrInvalidRentSysvar
	}
	data := info.Account.Data
	if len(data) < RentSysvarSize {
		return Rent{}, ErrInvalidRentSysvar
	}
	return Rent{
		LamportsPerByteYear: binary.LittleEndian.Uint64(data[0:8]),
		ExemptionThreshold:  math.Float64frombits(binary.LittleEndian.Uint64(data[8:16])),
		BurnPercent:         data[16],
	}, nil
}
