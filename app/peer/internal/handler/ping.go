package handler

import (
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/serializer"
)

// Ping 存活探测消息体，Pong 为 true 表示应答
type Ping struct {
	Pong bool   `codec:"pong" json:"pong"`
	Seq  uint32 `codec:"seq" json:"seq"`
}

// BuildPing 使用 codec 编码 Ping 并打包为消息帧
func BuildPing(f framer.Framer, codec serializer.Serializer, p Ping) (*framer.Message, error) {
	payload, err := framer.Encoded(codec, p)
	if err != nil {
		return nil, err
	}
	return f.Build(payload, framer.TypePing)
}

// ParsePing 解码 Ping，空消息体视为序号为 0 的探测
func ParsePing(codec serializer.Serializer, msg *framer.Message) (Ping, error) {
	var p Ping
	if len(msg.Payload()) == 0 {
		return p, nil
	}
	err := codec.Deserialize(msg.Payload(), &p)
	return p, err
}
