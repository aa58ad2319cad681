package mediastream

import (
	"context"
	"fmt"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// SeekEngine repositions the read cursor of a container on a given stream.
type SeekEngine struct {
	demuxer    types.Demuxer
	descriptor types.StreamDescriptor
	flags      types.SeekFlags
	observer   types.Observer
}

func newSeekEngine(
	demuxer types.Demuxer,
	descriptor types.StreamDescriptor,
	flags types.SeekFlags,
	observer types.Observer,
) *SeekEngine {
	return &SeekEngine{
		demuxer:    demuxer,
		descriptor: descriptor,
		flags:      flags,
		observer:   observer,
	}
}

// TimestampForSeconds converts a position in seconds to a timestamp of the
// stream, shifted by the start offset of the container (if it is defined).
func (e *SeekEngine) TimestampForSeconds(seconds float64) (int64, error) {
	timeBase := e.descriptor.TimeBase
	if timeBase.IsZero() {
		return 0, fmt.Errorf("stream #%d has an invalid time base %s", e.descriptor.Index, timeBase)
	}
	ts := seconds * float64(timeBase.Den) / float64(timeBase.Num)
	// float64(math.MaxInt64) is 2^63, which is already out of range
	if math.IsNaN(ts) || ts >= math.MaxInt64 || ts <= math.MinInt64 {
		return 0, fmt.Errorf("%f seconds do not fit into a timestamp with time base %s", seconds, timeBase)
	}
	return e.withStartTime(int64(ts))
}

// TimestampForFrame converts a frame index to a timestamp: the index is
// multiplied by types.TimeBase and shifted by the start offset of the
// container (if it is defined).
func (e *SeekEngine) TimestampForFrame(frameIndex int64) (int64, error) {
	if frameIndex > math.MaxInt64/types.TimeBase || frameIndex < math.MinInt64/types.TimeBase {
		return 0, fmt.Errorf("frame #%d does not fit into a timestamp", frameIndex)
	}
	return e.withStartTime(frameIndex * types.TimeBase)
}

func (e *SeekEngine) withStartTime(ts int64) (int64, error) {
	startTime := e.demuxer.StartTime()
	if startTime == types.NoPTSValue {
		return ts, nil
	}
	sum := ts + startTime
	if (startTime > 0 && sum < ts) || (startTime < 0 && sum > ts) || sum == types.NoPTSValue {
		return 0, fmt.Errorf("timestamp %d shifted by the start time %d does not fit into int64", ts, startTime)
	}
	return sum, nil
}

func (e *SeekEngine) SeekByTime(
	ctx context.Context,
	seconds float64,
) (_err error) {
	logger.Debugf(ctx, "SeekByTime(%f)", seconds)
	defer func() { logger.Debugf(ctx, "/SeekByTime(%f): %v", seconds, _err) }()

	ts, err := e.TimestampForSeconds(seconds)
	if err != nil {
		return types.ErrRange{URL: e.demuxer.URL(), Position: seconds, Err: err}
	}
	return e.seek(ctx, ts)
}

func (e *SeekEngine) SeekByFrame(
	ctx context.Context,
	frameIndex int64,
) (_err error) {
	logger.Debugf(ctx, "SeekByFrame(%d)", frameIndex)
	defer func() { logger.Debugf(ctx, "/SeekByFrame(%d): %v", frameIndex, _err) }()

	ts, err := e.TimestampForFrame(frameIndex)
	if err != nil {
		return types.ErrRange{URL: e.demuxer.URL(), Position: float64(frameIndex) * types.TimeBase * e.descriptor.TimeBase.Float64(), Err: err}
	}
	return e.seek(ctx, ts)
}

func (e *SeekEngine) seek(
	ctx context.Context,
	ts int64,
) error {
	if err := e.demuxer.SeekFrame(ctx, e.descriptor.Index, ts, e.flags); err != nil {
		return types.ErrRange{
			URL:      e.demuxer.URL(),
			Position: e.descriptor.TicksToSeconds(ts),
			Err:      err,
		}
	}
	e.observer.Seeked(e.descriptor.Index, ts)
	return nil
}
