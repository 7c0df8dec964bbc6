package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mcoot/connectfour-go/internal/model"
)

// Codec converts protocol envelopes to and from wire bytes
type Codec interface {
	DecodeRequest(data []byte) (*Request, error)
	EncodeRequest(req *Request) ([]byte, error)
	DecodeResponse(data []byte) (*Response, error)
	EncodeResponse(resp *Response) ([]byte, error)
}

// MsgpackCodec encodes envelopes as MessagePack maps
type MsgpackCodec struct{}

// Ensure MsgpackCodec implements Codec
var _ Codec = (*MsgpackCodec)(nil)

// NewMsgpackCodec creates a new MsgpackCodec
func NewMsgpackCodec() *MsgpackCodec {
	return &MsgpackCodec{}
}

// DecodeRequest parses a request, failing with model.ErrDecode on malformed
// input or an envelope without exactly one variant
func (c *MsgpackCodec) DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := msgpack.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}
	if req.Kind() == RequestKindNone {
		return nil, fmt.Errorf("%w: request must carry exactly one variant", model.ErrDecode)
	}
	return &req, nil
}

// EncodeRequest serializes a request
func (c *MsgpackCodec) EncodeRequest(req *Request) ([]byte, error) {
	return msgpack.Marshal(req)
}

// DecodeResponse parses a response, failing with model.ErrDecode on malformed
// input or an envelope without exactly one variant
func (c *MsgpackCodec) DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := msgpack.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}
	if resp.Kind() == ResponseKindNone {
		return nil, fmt.Errorf("%w: response must carry exactly one variant", model.ErrDecode)
	}
	return &resp, nil
}

// EncodeResponse serializes a response
func (c *MsgpackCodec) EncodeResponse(resp *Response) ([]byte, error) {
	return msgpack.Marshal(resp)
}
