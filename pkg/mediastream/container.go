package mediastream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// Container is an opened media container together with its streams.
//
// A Container and its streams are not safe for concurrent use, see
// LockedStream.
type Container struct {
	demuxer    types.Demuxer
	config     Config
	streams    []*Stream
	statistics CommonsStatistics

	closeOnce sync.Once
	closeErr  error
}

// Open opens the media container at path using opener.
//
// A path without a URL scheme must point to a regular file.
func Open(
	ctx context.Context,
	opener types.ContainerOpener,
	path string,
	opts ...Option,
) (_ret *Container, _err error) {
	logger.Debugf(ctx, "Open(ctx, '%s')", path)
	defer func() { logger.Debugf(ctx, "/Open(ctx, '%s'): %v", path, _err) }()

	if !hasURLScheme(path) {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil, types.ErrNotRegularFile{Path: path}
		}
	}

	demuxer, err := opener.OpenContainer(ctx, path)
	if err != nil {
		var errUnsupported types.ErrUnsupportedFormat
		if !errors.As(err, &errUnsupported) {
			err = types.ErrUnsupportedFormat{URL: path, Err: err}
		}
		return nil, err
	}

	return NewContainer(ctx, demuxer, opts...), nil
}

func hasURLScheme(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	// a single letter is a drive letter rather than a scheme
	return len(u.Scheme) > 1
}

// NewContainer wraps an already opened demuxer.
func NewContainer(
	ctx context.Context,
	demuxer types.Demuxer,
	opts ...Option,
) *Container {
	c := &Container{
		demuxer: demuxer,
		config:  Options(opts).Config(ctx),
	}
	c.statistics.next = c.config.Observer

	for _, descriptor := range demuxer.Streams() {
		c.streams = append(c.streams, newStream(c, descriptor))
	}
	logger.Debugf(ctx, "container '%s' has %d streams", demuxer.URL(), len(c.streams))
	return c
}

func (c *Container) URL() string {
	return c.demuxer.URL()
}

// StartTime returns the start offset of the container in types.TimeBase
// units, or types.NoPTSValue.
func (c *Container) StartTime() int64 {
	return c.demuxer.StartTime()
}

func (c *Container) Streams() []*Stream {
	result := make([]*Stream, len(c.streams))
	copy(result, c.streams)
	return result
}

func (c *Container) Stream(index int) (*Stream, error) {
	for _, s := range c.streams {
		if s.descriptor.Index == index {
			return s, nil
		}
	}
	return nil, fmt.Errorf("stream #%d not found in '%s'", index, c.URL())
}

func (c *Container) Config() Config {
	return c.config
}

func (c *Container) Statistics() types.Statistics {
	return c.statistics.Convert()
}

func (c *Container) observer() types.Observer {
	return &c.statistics
}

// Close closes the decoders of all the streams and the demuxer.
func (c *Container) resetDecoding(ctx context.Context) error {
	var mErr *multierror.Error
	for _, s := range c.streams {
		if err := s.resetDecoding(ctx); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	return mErr.ErrorOrNil()
}

func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		var mErr *multierror.Error
		for _, s := range c.streams {
			if err := s.close(); err != nil {
				mErr = multierror.Append(mErr, fmt.Errorf("unable to close stream #%d: %w", s.Index(), err))
			}
		}
		if err := c.demuxer.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to close the demuxer: %w", err))
		}
		c.closeErr = mErr.ErrorOrNil()
	})
	return c.closeErr
}
