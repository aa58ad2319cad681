package libav

import (
	"context"

	"github.com/xaionaro-go/mediastream/pkg/mediastream/types"
)

// Opener opens containers using FFmpeg.
type Opener struct {
	Config Config
}

var _ types.ContainerOpener = (*Opener)(nil)

func NewOpener(ctx context.Context, opts ...Option) *Opener {
	return &Opener{
		Config: Options(opts).Config(ctx),
	}
}

func (o *Opener) OpenContainer(
	ctx context.Context,
	url string,
) (types.Demuxer, error) {
	d, err := newDemuxer(ctx, url, o.Config)
	if err != nil {
		return nil, types.ErrUnsupportedFormat{URL: url, Err: err}
	}
	return d, nil
}
