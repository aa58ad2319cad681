package mediastream

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// codecState is the lazily opened decoder of one stream.
//
// The decoder is opened at most once per stream: every decode call goes
// through open, which reuses the existing decoder.
type codecState struct {
	demuxer    types.Demuxer
	descriptor types.StreamDescriptor
	decoder    types.Decoder
	closed     bool
}

func newCodecState(
	demuxer types.Demuxer,
	descriptor types.StreamDescriptor,
) *codecState {
	return &codecState{
		demuxer:    demuxer,
		descriptor: descriptor,
	}
}

func (s *codecState) IsOpen() bool {
	return s.decoder != nil && s.decoder.IsOpen()
}

func (s *codecState) open(ctx context.Context) (_ret types.Decoder, _err error) {
	if s.decoder != nil {
		if !s.decoder.IsOpen() {
			return nil, types.ErrInvariantViolation{
				Reason: fmt.Sprintf("the decoder of stream #%d was closed", s.descriptor.Index),
			}
		}
		return s.decoder, nil
	}
	if s.closed {
		return nil, types.ErrInvariantViolation{
			Reason: fmt.Sprintf("the codec state of stream #%d is already closed", s.descriptor.Index),
		}
	}

	logger.Debugf(ctx, "opening the decoder of stream #%d (%s)", s.descriptor.Index, s.descriptor.CodecName)
	defer func() { logger.Debugf(ctx, "/opening the decoder of stream #%d: %v", s.descriptor.Index, _err) }()

	decoder, err := s.demuxer.OpenDecoder(ctx, s.descriptor.Index)
	if err != nil {
		var errCodec types.ErrCodec
		if !errors.As(err, &errCodec) {
			err = types.ErrCodec{
				StreamIndex: s.descriptor.Index,
				CodecName:   s.descriptor.CodecName,
				Err:         err,
			}
		}
		return nil, err
	}
	s.decoder = decoder
	return decoder, nil
}

// get returns the decoder, which must already be open.
func (s *codecState) get() (types.Decoder, error) {
	if !s.IsOpen() {
		return nil, types.ErrInvariantViolation{
			Reason: fmt.Sprintf("the codec of stream #%d should have already been opened", s.descriptor.Index),
		}
	}
	return s.decoder, nil
}

func (s *codecState) Close() error {
	s.closed = true
	if s.decoder == nil {
		return nil
	}
	decoder := s.decoder
	s.decoder = nil
	return decoder.Close()
}
