package drawlist

import (
	"encoding/binary"
	"fmt"

	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

// Header is the parsed fixed 64-byte ZRDL v1 header.
type Header struct {
	Magic              uint32
	Version            uint32
	HeaderSize         uint32
	TotalSize          uint32
	CmdOffset          uint32
	CmdBytes           uint32
	CmdCount           uint32
	StringsSpanOffset  uint32
	StringsCount       uint32
	StringsBytesOffset uint32
	StringsBytesLen    uint32
	BlobsSpanOffset    uint32
	BlobsCount         uint32
	BlobsBytesOffset   uint32
	BlobsBytesLen      uint32
}

// Command is one decoded drawlist op.
type Command struct {
	Opcode  uint16
	Size    uint32
	Payload []byte
}

// FillRectOp, DrawTextOp, etc. are the decoded, opcode-specific views
// produced by Decode for convenience in tests and renderers.
type FillRectOp struct {
	X, Y, W, H int32
	Style      style.Style
}

type DrawTextOp struct {
	X, Y    int32
	Text    string
	Style   style.Style
}

type PushClipOp struct {
	X, Y, W, H int32
}

type DrawTextRunOp struct {
	X, Y    int32
	Segments []TextRunSegment
}

// Decoded is the fully parsed drawlist: the raw command stream plus the
// resolved string/blob tables needed to interpret DrawText/DrawTextRun ops.
type Decoded struct {
	Header  Header
	Cmds    []Command
	Strings []string
	Blobs   [][]byte
}

func readErr(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrFormat, Message: fmt.Sprintf(format, args...)}
}

// Decode parses a ZRDL v1 byte stream, validating the header and every
// command/string/blob span against the given caps.
func Decode(data []byte, caps Caps) (*Decoded, error) {
	if len(data) < int(HeaderSize) {
		return nil, readErr("stream shorter than header size")
	}
	if len(data) > caps.MaxDrawlistBytes {
		return nil, &Error{Kind: ErrTooLarge, Message: "stream exceeds maxDrawlistBytes"}
	}

	h := Header{
		Magic:              binary.LittleEndian.Uint32(data[0:4]),
		Version:            binary.LittleEndian.Uint32(data[4:8]),
		HeaderSize:         binary.LittleEndian.Uint32(data[8:12]),
		TotalSize:          binary.LittleEndian.Uint32(data[12:16]),
		CmdOffset:          binary.LittleEndian.Uint32(data[16:20]),
		CmdBytes:           binary.LittleEndian.Uint32(data[20:24]),
		CmdCount:           binary.LittleEndian.Uint32(data[24:28]),
		StringsSpanOffset:  binary.LittleEndian.Uint32(data[28:32]),
		StringsCount:       binary.LittleEndian.Uint32(data[32:36]),
		StringsBytesOffset: binary.LittleEndian.Uint32(data[36:40]),
		StringsBytesLen:    binary.LittleEndian.Uint32(data[40:44]),
		BlobsSpanOffset:    binary.LittleEndian.Uint32(data[44:48]),
		BlobsCount:         binary.LittleEndian.Uint32(data[48:52]),
		BlobsBytesOffset:   binary.LittleEndian.Uint32(data[52:56]),
		BlobsBytesLen:      binary.LittleEndian.Uint32(data[56:60]),
	}

	if h.Magic != Magic {
		return nil, readErr("bad magic %#x", h.Magic)
	}
	if h.Version != Version {
		return nil, readErr("unsupported version %d", h.Version)
	}
	if h.HeaderSize != HeaderSize {
		return nil, readErr("unexpected header size %d", h.HeaderSize)
	}
	if int(h.TotalSize) != len(data) {
		return nil, readErr("totalSize %d does not match stream length %d", h.TotalSize, len(data))
	}
	if int(h.CmdCount) > caps.MaxCmdCount {
		return nil, &Error{Kind: ErrTooLarge, Message: "cmdCount exceeds maxCmdCount"}
	}
	if int(h.StringsCount) > caps.MaxStrings || int(h.StringsBytesLen) > caps.MaxStringBytes {
		return nil, &Error{Kind: ErrTooLarge, Message: "string table exceeds caps"}
	}
	if int(h.BlobsCount) > caps.MaxBlobs || int(h.BlobsBytesLen) > caps.MaxBlobBytes {
		return nil, &Error{Kind: ErrTooLarge, Message: "blob table exceeds caps"}
	}

	cmdEnd := int(h.CmdOffset) + int(h.CmdBytes)
	if h.CmdCount > 0 && (cmdEnd > len(data) || int(h.CmdOffset) < int(HeaderSize)) {
		return nil, readErr("command section out of bounds")
	}

	cmds := make([]Command, 0, h.CmdCount)
	off := int(h.CmdOffset)
	for i := 0; i < int(h.CmdCount); i++ {
		if off+cmdHeaderSize > len(data) {
			return nil, readErr("truncated command header at offset %d", off)
		}
		opcode := binary.LittleEndian.Uint16(data[off : off+2])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		if int(size) < cmdHeaderSize || off+int(size) > len(data) {
			return nil, readErr("command %d has invalid size %d", i, size)
		}
		payload := data[off+cmdHeaderSize : off+int(size)]
		cmds = append(cmds, Command{Opcode: opcode, Size: size, Payload: payload})
		off += int(size)
	}

	strs, err := decodeStrings(data, h)
	if err != nil {
		return nil, err
	}
	blobs, err := decodeBlobs(data, h)
	if err != nil {
		return nil, err
	}

	return &Decoded{Header: h, Cmds: cmds, Strings: strs, Blobs: blobs}, nil
}

func decodeStrings(data []byte, h Header) ([]string, error) {
	if h.StringsCount == 0 {
		return nil, nil
	}
	spanEnd := int(h.StringsSpanOffset) + 8*int(h.StringsCount)
	if spanEnd > len(data) {
		return nil, readErr("string span table out of bounds")
	}
	out := make([]string, h.StringsCount)
	for i := 0; i < int(h.StringsCount); i++ {
		base := int(h.StringsSpanOffset) + 8*i
		off := binary.LittleEndian.Uint32(data[base : base+4])
		length := binary.LittleEndian.Uint32(data[base+4 : base+8])
		start := int(h.StringsBytesOffset) + int(off)
		end := start + int(length)
		if end > len(data) || end > int(h.StringsBytesOffset)+int(h.StringsBytesLen) {
			return nil, readErr("string %d bytes out of bounds", i)
		}
		out[i] = string(data[start:end])
	}
	return out, nil
}

func decodeBlobs(data []byte, h Header) ([][]byte, error) {
	if h.BlobsCount == 0 {
		return nil, nil
	}
	spanEnd := int(h.BlobsSpanOffset) + 8*int(h.BlobsCount)
	if spanEnd > len(data) {
		return nil, readErr("blob span table out of bounds")
	}
	out := make([][]byte, h.BlobsCount)
	for i := 0; i < int(h.BlobsCount); i++ {
		base := int(h.BlobsSpanOffset) + 8*i
		off := binary.LittleEndian.Uint32(data[base : base+4])
		length := binary.LittleEndian.Uint32(data[base+4 : base+8])
		start := int(h.BlobsBytesOffset) + int(off)
		end := start + int(length)
		if end > len(data) || end > int(h.BlobsBytesOffset)+int(h.BlobsBytesLen) {
			return nil, readErr("blob %d bytes out of bounds", i)
		}
		out[i] = data[start:end]
	}
	return out, nil
}

func getStyle(buf []byte) style.Style {
	return style.Style{
		Fg:    style.Color(binary.LittleEndian.Uint32(buf[0:4])),
		Bg:    style.Color(binary.LittleEndian.Uint32(buf[4:8])),
		Attrs: style.Attr(binary.LittleEndian.Uint32(buf[8:12])),
	}
}

// DecodeFillRect interprets a FillRect command's payload.
func DecodeFillRect(c Command) (FillRectOp, error) {
	if c.Opcode != OpFillRect || len(c.Payload) != 32 {
		return FillRectOp{}, readErr("not a well-formed FillRect command")
	}
	return FillRectOp{
		X:     int32(binary.LittleEndian.Uint32(c.Payload[0:4])),
		Y:     int32(binary.LittleEndian.Uint32(c.Payload[4:8])),
		W:     int32(binary.LittleEndian.Uint32(c.Payload[8:12])),
		H:     int32(binary.LittleEndian.Uint32(c.Payload[12:16])),
		Style: getStyle(c.Payload[16:32]),
	}, nil
}

// DecodeDrawText interprets a DrawText command's payload against the
// decoded string table.
func DecodeDrawText(c Command, strs []string) (DrawTextOp, error) {
	if c.Opcode != OpDrawText || len(c.Payload) != 40 {
		return DrawTextOp{}, readErr("not a well-formed DrawText command")
	}
	idx := binary.LittleEndian.Uint32(c.Payload[8:12])
	byteOff := binary.LittleEndian.Uint32(c.Payload[12:16])
	byteLen := binary.LittleEndian.Uint32(c.Payload[16:20])
	if int(idx) >= len(strs) {
		return DrawTextOp{}, readErr("DrawText stringIndex %d out of range", idx)
	}
	s := strs[idx]
	if int(byteOff+byteLen) > len(s) {
		return DrawTextOp{}, readErr("DrawText byte range out of bounds")
	}
	return DrawTextOp{
		X:     int32(binary.LittleEndian.Uint32(c.Payload[0:4])),
		Y:     int32(binary.LittleEndian.Uint32(c.Payload[4:8])),
		Text:  s[byteOff : byteOff+byteLen],
		Style: getStyle(c.Payload[20:36]),
	}, nil
}

// DecodePushClip interprets a PushClip command's payload.
func DecodePushClip(c Command) (PushClipOp, error) {
	if c.Opcode != OpPushClip || len(c.Payload) != 16 {
		return PushClipOp{}, readErr("not a well-formed PushClip command")
	}
	return PushClipOp{
		X: int32(binary.LittleEndian.Uint32(c.Payload[0:4])),
		Y: int32(binary.LittleEndian.Uint32(c.Payload[4:8])),
		W: int32(binary.LittleEndian.Uint32(c.Payload[8:12])),
		H: int32(binary.LittleEndian.Uint32(c.Payload[12:16])),
	}, nil
}

// DecodeDrawTextRun interprets a DrawTextRun command's payload, resolving
// its blob into styled text segments.
func DecodeDrawTextRun(c Command, strs []string, blobs [][]byte) (DrawTextRunOp, error) {
	if c.Opcode != OpDrawTextRun || len(c.Payload) != 16 {
		return DrawTextRunOp{}, readErr("not a well-formed DrawTextRun command")
	}
	blobIdx := binary.LittleEndian.Uint32(c.Payload[8:12])
	if int(blobIdx) >= len(blobs) {
		return DrawTextRunOp{}, readErr("DrawTextRun blobIndex %d out of range", blobIdx)
	}
	blob := blobs[blobIdx]
	if len(blob) < 4 {
		return DrawTextRunOp{}, readErr("text-run blob truncated")
	}
	segCount := binary.LittleEndian.Uint32(blob[0:4])
	segs := make([]TextRunSegment, 0, segCount)
	off := 4
	for i := 0; i < int(segCount); i++ {
		if off+28 > len(blob) {
			return DrawTextRunOp{}, readErr("text-run blob segment %d truncated", i)
		}
		rec := blob[off : off+28]
		s := getStyle(rec[0:16])
		idx := binary.LittleEndian.Uint32(rec[16:20])
		byteOff := binary.LittleEndian.Uint32(rec[20:24])
		byteLen := binary.LittleEndian.Uint32(rec[24:28])
		if int(idx) >= len(strs) {
			return DrawTextRunOp{}, readErr("text-run segment %d stringIndex out of range", i)
		}
		str := strs[idx]
		if int(byteOff+byteLen) > len(str) {
			return DrawTextRunOp{}, readErr("text-run segment %d byte range out of bounds", i)
		}
		segs = append(segs, TextRunSegment{Style: s, Text: str[byteOff : byteOff+byteLen]})
		off += 28
	}
	return DrawTextRunOp{
		X:        int32(binary.LittleEndian.Uint32(c.Payload[0:4])),
		Y:        int32(binary.LittleEndian.Uint32(c.Payload[4:8])),
		Segments: segs,
	}, nil
}
