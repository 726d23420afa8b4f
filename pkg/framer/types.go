package framer

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// 覆盖网络协议中已知的消息类型
const (
	TypeHello         uint16 = 1
	TypeManifests     uint16 = 2
	TypePing          uint16 = 3
	TypeProofOfWork   uint16 = 4
	TypeCluster       uint16 = 5
	TypeGetPeers      uint16 = 12
	TypePeers         uint16 = 13
	TypeEndpoints     uint16 = 15
	TypeTransaction   uint16 = 30
	TypeGetLedger     uint16 = 31
	TypeLedgerData    uint16 = 32
	TypeProposeLedger uint16 = 33
	TypeStatusChange  uint16 = 34
	TypeHaveSet       uint16 = 35
	TypeValidation    uint16 = 41
	TypeGetObjects    uint16 = 42
)

var typeNames = map[uint16]string{
	TypeHello:         "hello",
	TypeManifests:     "manifests",
	TypePing:          "ping",
	TypeProofOfWork:   "proof_of_work",
	TypeCluster:       "cluster",
	TypeGetPeers:      "get_peers",
	TypePeers:         "peers",
	TypeEndpoints:     "endpoints",
	TypeTransaction:   "transaction",
	TypeGetLedger:     "get_ledger",
	TypeLedgerData:    "ledger_data",
	TypeProposeLedger: "propose_ledger",
	TypeStatusChange:  "status_change",
	TypeHaveSet:       "have_set",
	TypeValidation:    "validation",
	TypeGetObjects:    "get_objects",
}

// TypeName 返回消息类型名称，用于日志
func TypeName(typ uint16) string {
	if name, ok := typeNames[typ]; ok {
		return name
	}
	return "type(" + strconv.Itoa(int(typ)) + ")"
}

// ParseType 解析消息类型，接受名称（如 "ping"）或十进制数值
func ParseType(s string) (uint16, error) {
	for typ, name := range typeNames {
		if name == s {
			return typ, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Newf("unknown message type %q", s)
	}
	return uint16(n), nil
}
