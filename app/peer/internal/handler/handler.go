package handler

import (
	"sync/atomic"

	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/logger"
	"github.com/lk2023060901/overlay/pkg/network/session"
	"github.com/lk2023060901/overlay/pkg/serializer"
)

// PeerHandler 处理对等节点的连接与消息。
type PeerHandler struct {
	session.NopSessionHandler
	logger logger.Logger
	framer framer.Framer
	codec  serializer.Serializer
	seq    atomic.Uint32
}

var _ session.SessionHandler = (*PeerHandler)(nil)

func New(l logger.Logger, f framer.Framer, codec serializer.Serializer) *PeerHandler {
	return &PeerHandler{
		logger: l.Named("peer.handler"),
		framer: f,
		codec:  codec,
	}
}

// OnOpened 连接建立后立即发送一次探测
func (h *PeerHandler) OnOpened(s session.Session) {
	h.logger.Info("peer connected", "id", s.ID(), "addr", s.RemoteAddr())

	ping, err := BuildPing(h.framer, h.codec, Ping{Seq: h.seq.Add(1)})
	if err != nil {
		h.logger.Error("build ping failed", "id", s.ID(), "error", err)
		return
	}
	if err := s.Send(s.Context(), ping); err != nil {
		h.logger.Warn("send ping failed", "id", s.ID(), "error", err)
	}
}

func (h *PeerHandler) OnClosed(s session.Session, err error) {
	h.logger.Info("peer disconnected", "id", s.ID(), "error", err)
}

func (h *PeerHandler) OnError(s session.Session, err error) {
	h.logger.Warn("peer protocol error", "id", s.ID(), "error", err)
}

func (h *PeerHandler) OnMessage(s session.Session, msg *framer.Message) {
	h.logger.Debug("received message",
		"id", s.ID(),
		"type", framer.TypeName(msg.Type()),
		"category", msg.Category().String(),
		"bytes", msg.Len(),
	)

	switch msg.Type() {
	case framer.TypePing:
		h.handlePing(s, msg)
	}
}

// handlePing 对探测回复同序号的应答
func (h *PeerHandler) handlePing(s session.Session, msg *framer.Message) {
	p, err := ParsePing(h.codec, msg)
	if err != nil {
		h.logger.Warn("failed to decode ping", "id", s.ID(), "error", err)
		return
	}
	if p.Pong {
		h.logger.Debug("pong received", "id", s.ID(), "seq", p.Seq)
		return
	}

	pong, err := BuildPing(h.framer, h.codec, Ping{Pong: true, Seq: p.Seq})
	if err != nil {
		h.logger.Error("build pong failed", "id", s.ID(), "error", err)
		return
	}
	if err := s.Send(s.Context(), pong); err != nil {
		h.logger.Warn("send pong failed", "id", s.ID(), "error", err)
	}
}
