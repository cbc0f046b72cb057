package mccontrol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
)

// 数据包类型
const (
	// PacketTypeAuth 认证请求，Body为RCON密码
	PacketTypeAuth int32 = 3

	// PacketTypeCommand 命令请求；服务器回应认证包时也使用此类型
	PacketTypeCommand int32 = 2
)

const (
	// packetWrapperSize 长度字段之后除Body外的字节数：ID(4) + Type(4) + 两个结束符(2)
	packetWrapperSize = 4 + 4 + 2

	// MinPacketLength 长度字段允许的最小值
	MinPacketLength = packetWrapperSize

	// MaxPacketLength 读取时允许的最大长度，仅用于防止异常长度导致的大块内存分配
	MaxPacketLength = 4 << 20
)

// Packet 表示一个RCON数据包
type Packet struct {
	ID   int32  // 请求ID，认证失败时服务器回显 -1
	Type int32  // 数据包类型，读取时不做校验
	Body []byte // 负载，不含两个结束符
}

// EncodePacket 将数据包编码为线上格式：
// 长度(LE int32) | ID(LE int32) | 类型(LE int32) | 负载 | 0x00 0x00
func EncodePacket(id, typ int32, payload []byte) ([]byte, error) {
	if len(payload) > math.MaxInt32-packetWrapperSize {
		return nil, newError(KindProtocol, "encode", fmt.Errorf("payload too large: %d bytes", len(payload)))
	}
	length := packetWrapperSize + len(payload)

	buf := make([]byte, 4+length)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(length))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(id))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(typ))
	copy(buf[12:], payload)
	// 结束符已经是零值

	return buf, nil
}

// DecodePacket 从r中读取一个数据包。
// Body末尾的两个字节无条件去掉，不检查它们是否为NUL。
func DecodePacket(r io.Reader) (*Packet, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if isTimeout(err) {
			return nil, newError(KindTimeout, "read", err)
		}
		return nil, newError(KindConnectivity, "read", err)
	}

	length := int32(binary.LittleEndian.Uint32(header[:]))
	if length < MinPacketLength {
		return nil, newError(KindProtocol, "read", fmt.Errorf("packet too short: length %d", length))
	}
	if length > MaxPacketLength {
		return nil, newError(KindProtocol, "read", fmt.Errorf("packet too long: length %d", length))
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if isTimeout(err) {
			return nil, newError(KindTimeout, "read", err)
		}
		return nil, newError(KindProtocol, "read", fmt.Errorf("truncated packet: %w", err))
	}

	return &Packet{
		ID:   int32(binary.LittleEndian.Uint32(data[0:4])),
		Type: int32(binary.LittleEndian.Uint32(data[4:8])),
		Body: data[8 : length-2],
	}, nil
}

// isNoReply 判断读取错误是否表示没有收到回应。
// 读包头时连接被关闭或重置都算，超时和协议错误不算。
func isNoReply(err error) bool {
	return KindOf(err) == KindConnectivity
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
