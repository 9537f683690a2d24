package lifecycle

import (
	"context"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/engine"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/overlay"
	"github.com/Iron-Ham/invisiboga/internal/render"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// Surface is the render surface: the frame loop the controller starts once
// the application is initialized. render.Loop implements it.
type Surface interface {
	Start(ctx context.Context) error
	Pause()
	Resume()
	Stop()
}

// Views are the UI pieces built for a live engine session.
type Views struct {
	Surface Surface
	Overlay *overlay.Overlay
	// Bridge carries engine UI requests to Overlay. It is closed on
	// Destroy.
	Bridge *uibridge.Bridge
}

// ViewFactory builds the views for a freshly created engine session. It runs
// on the UI thread while entering StateInitAR.
type ViewFactory func(h *engine.Handle) (Views, error)

// ViewOptions tune the views built by DefaultViews.
type ViewOptions struct {
	FPS        int
	ToastShort time.Duration
	ToastLong  time.Duration
	Logger     *logging.Logger
	Metrics    *metrics.Metrics
	// Mirror, when set, receives every engine UI message after the overlay.
	Mirror uibridge.Applier
}

// DefaultViews returns a ViewFactory wiring an overlay, a bridge that
// applies engine messages to it on the UI thread reached through poster,
// and a render loop that hands the bridge to the engine every frame.
func DefaultViews(poster uibridge.Poster, vo ViewOptions) ViewFactory {
	logger := vo.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return func(h *engine.Handle) (Views, error) {
		ov := overlay.New(h,
			overlay.WithLogger(logger),
			overlay.WithToastDurations(vo.ToastShort, vo.ToastLong),
		)
		br := uibridge.New(poster, uibridge.Tee(ov, vo.Mirror),
			uibridge.WithLogger(logger),
			uibridge.WithMetrics(vo.Metrics),
		)
		loop := render.NewLoop(h, br,
			render.WithFPS(vo.FPS),
			render.WithLogger(logger.WithSession(h.ID())),
			render.WithMetrics(vo.Metrics),
		)
		return Views{Surface: loop, Overlay: ov, Bridge: br}, nil
	}
}
