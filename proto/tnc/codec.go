// ABOUTME: gRPC codec serializing the tnc message types as protobuf wire format
// ABOUTME: Field layouts match the shipped .proto contract byte for byte

package tnc

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

// wireMessage is implemented by every tnc message type. The encoding is
// standard protobuf wire format with the field numbers declared in the
// shipped .proto files, so stubs generated from that contract interoperate
// with this codec byte for byte.
type wireMessage interface {
	marshal() ([]byte, error)
	unmarshal(data []byte) error
}

// Codec serializes tnc messages (and plain proto messages) for gRPC. The
// server installs it via grpc.ForceServerCodec; the client stubs in this
// package force it per call. Its name is "proto" because the bytes it
// produces are protobuf wire format under the standard content subtype.
type Codec struct{}

// Name reports the codec's content subtype.
func (Codec) Name() string {
	return "proto"
}

// Marshal serializes a tnc message or a proto message.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.marshal()
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("codec: cannot marshal %T", v)
	}
}

// Unmarshal deserializes into a tnc message or a proto message.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case wireMessage:
		return m.unmarshal(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("codec: cannot unmarshal into %T", v)
	}
}

// withCodec forces this package's codec on a client call so the stubs work
// against any grpc.ClientConn without dial-time configuration.
func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
}

// Marshal helpers. Scalar fields follow proto3 semantics: zero values are
// omitted unless the field tracks presence (pointer fields).

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendUint32Field(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendInt32Field(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendOptionalString(b []byte, num protowire.Number, v *string) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *v)
}

func appendOptionalBool(b []byte, num protowire.Number, v *bool) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	val := uint64(0)
	if *v {
		val = 1
	}
	return protowire.AppendVarint(b, val)
}

func appendMessageField(b []byte, num protowire.Number, m proto.Message) ([]byte, error) {
	data, err := proto.Marshal(m)
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, data), nil
}

// walk iterates the wire fields of data. handle returns the number of bytes
// it consumed for a recognized field, or -1 to have the field skipped.
func walk(data []byte, handle func(num protowire.Number, typ protowire.Type, field []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		consumed, err := handle(num, typ, data)
		if err != nil {
			return err
		}
		if consumed < 0 {
			consumed = protowire.ConsumeFieldValue(num, typ, data)
			if consumed < 0 {
				return protowire.ParseError(consumed)
			}
		}
		data = data[consumed:]
	}
	return nil
}

// Unmarshal helpers, one per scalar shape.

func consumeStringField(field []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(field)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeBoolField(field []byte, dst *bool) (int, error) {
	v, n := protowire.ConsumeVarint(field)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v != 0
	return n, nil
}

func consumeUint32Field(field []byte, dst *uint32) (int, error) {
	v, n := protowire.ConsumeVarint(field)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = uint32(v)
	return n, nil
}

func consumeInt32Field(field []byte, dst *int32) (int, error) {
	v, n := protowire.ConsumeVarint(field)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = int32(v)
	return n, nil
}

func consumeMessageField(field []byte, m proto.Message) (int, error) {
	v, n := protowire.ConsumeBytes(field)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if err := proto.Unmarshal(v, m); err != nil {
		return 0, err
	}
	return n, nil
}
