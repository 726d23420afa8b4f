// peerctl 覆盖网络消息帧的调试工具
//
//	peerctl inspect 000000030003aabbcc
//	peerctl send --addr 127.0.0.1:51235 --type ping
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/serializer"
	"github.com/spf13/pflag"
)

const usage = `usage:
  peerctl inspect [--codec name] <hex>
  peerctl send --addr host:port --type name|number [--payload hex] [--codec name] [--count n] [--timeout d]
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "peerctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "inspect":
		return inspect(args[1:], out)
	case "send":
		return send(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// inspect 解析一段十六进制帧，不完整时只输出能确定的部分
func inspect(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	codecName := fs.String("codec", "", "decode payload with serializer (json, msgpack)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New(usage)
	}

	raw, err := hex.DecodeString(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}

	h, ok := framer.ParseHeader(raw)
	if !ok {
		fmt.Fprintf(out, "incomplete header: have %d of %d bytes\n", len(raw), framer.HeaderBytes)
		return nil
	}

	f, err := framer.New(nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "body_length: %d\n", h.BodyLength)
	fmt.Fprintf(out, "type:        %d (%s)\n", h.Type, framer.TypeName(h.Type))
	fmt.Fprintf(out, "category:    %s\n", f.Categorize(h.Type))

	if len(raw) < h.FrameSize() {
		fmt.Fprintf(out, "incomplete body: have %d of %d bytes\n", len(raw)-framer.HeaderBytes, h.BodyLength)
		return nil
	}
	if extra := len(raw) - h.FrameSize(); extra > 0 {
		fmt.Fprintf(out, "trailing:    %d bytes\n", extra)
	}

	msg, err := f.Decode(raw[:h.FrameSize()])
	if err != nil {
		return err
	}
	// 整帧摘要，便于和对端日志比对
	fmt.Fprintf(out, "xxh64:       %016x\n", xxhash.Sum64(msg.Bytes()))
	return printPayload(out, msg, *codecName)
}

// send 发送一帧并打印超时前收到的回复
func send(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("send", pflag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:51235", "peer address")
	typeName := fs.String("type", "ping", "message type name or number")
	payloadHex := fs.String("payload", "", "payload in hex")
	codecName := fs.String("codec", "msgpack", "decode reply payloads with serializer")
	count := fs.Int("count", 1, "replies to wait for")
	timeout := fs.Duration("timeout", 5*time.Second, "dial and read timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	typ, err := framer.ParseType(*typeName)
	if err != nil {
		return err
	}
	payload, err := hex.DecodeString(*payloadHex)
	if err != nil {
		return fmt.Errorf("invalid payload hex: %w", err)
	}

	f, err := framer.New(nil)
	if err != nil {
		return err
	}
	msg, err := f.Build(framer.Raw(payload), typ)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := framer.NewWriter(conn).WriteMessage(msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	fmt.Fprintf(out, "> %s %d bytes\n", framer.TypeName(typ), msg.Len())

	if err := conn.SetReadDeadline(time.Now().Add(*timeout)); err != nil {
		return err
	}
	r := framer.NewReader(conn, f, 0)
	for i := 0; i < *count; i++ {
		reply, err := r.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Fprintf(out, "< %s category=%s %d bytes\n",
			framer.TypeName(reply.Type()), reply.Category(), reply.Len())
		if err := printPayload(out, reply, *codecName); err != nil {
			return err
		}
	}
	return nil
}

// printPayload 输出消息体十六进制，指定 codec 时附加解码结果
func printPayload(out io.Writer, msg *framer.Message, codecName string) error {
	fmt.Fprintf(out, "payload:     %s\n", hex.EncodeToString(msg.Payload()))
	if codecName == "" || len(msg.Payload()) == 0 {
		return nil
	}

	codec, err := serializer.ByName(codecName)
	if err != nil {
		return err
	}
	var v any
	if err := codec.Deserialize(msg.Payload(), &v); err != nil {
		fmt.Fprintf(out, "decoded:     <%s: %v>\n", codecName, err)
		return nil
	}
	pretty, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "decoded:     %s\n", pretty)
	return nil
}
