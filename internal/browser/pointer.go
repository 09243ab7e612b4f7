package browser

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// mouseSteps returns how many intermediate moves a pointer travel of
// distance px takes, clamped to [5, 30].
func mouseSteps(distance float64, jitterMs int) int {
	duration := 100 + (distance/2000)*200 + float64(jitterMs)
	steps := int(duration / 20)
	if steps < 5 {
		steps = 5
	}
	if steps > 30 {
		steps = 30
	}
	return steps
}

// bezier evaluates a cubic bezier at t.
func bezier(t, p0, p1, p2, p3 float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

// mouseMove travels from (fromX, fromY) to (toX, toY) along a jittered
// bezier curve.
func mouseMove(ctx context.Context, fromX, fromY, toX, toY float64) error {
	distance := math.Hypot(toX-fromX, toY-fromY)
	steps := mouseSteps(distance, rand.Intn(100))

	cp1X := fromX + (toX-fromX)*0.25 + (rand.Float64()-0.5)*50
	cp1Y := fromY + (toY-fromY)*0.25 + (rand.Float64()-0.5)*50
	cp2X := fromX + (toX-fromX)*0.75 + (rand.Float64()-0.5)*50
	cp2Y := fromY + (toY-fromY)*0.75 + (rand.Float64()-0.5)*50

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := bezier(t, fromX, cp1X, cp2X, toX) + (rand.Float64()-0.5)*2
		y := bezier(t, fromY, cp1Y, cp2Y, toY) + (rand.Float64()-0.5)*2

		if err := chromedp.Run(ctx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
			}),
		); err != nil {
			return err
		}
		if err := sleep(ctx, time.Duration(16+rand.Intn(8))*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// humanClick approaches (x, y) from a nearby point and presses the left
// button there.
func humanClick(ctx context.Context, x, y float64) error {
	offX := (rand.Float64()-0.5)*200 + 50
	offY := (rand.Float64()-0.5)*200 + 50
	startX, startY := x+offX, y+offY

	if math.Hypot(offX, offY) > 30 {
		if err := chromedp.Run(ctx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				return input.DispatchMouseEvent(input.MouseMoved, startX, startY).Do(ctx)
			}),
		); err != nil {
			return err
		}
		if err := mouseMove(ctx, startX, startY, x, y); err != nil {
			return err
		}
	}

	if err := sleep(ctx, time.Duration(50+rand.Intn(150))*time.Millisecond); err != nil {
		return err
	}
	if err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MousePressed, x, y).
				WithButton(input.Left).
				WithClickCount(1).
				Do(ctx)
		}),
	); err != nil {
		return err
	}

	if err := sleep(ctx, time.Duration(30+rand.Intn(90))*time.Millisecond); err != nil {
		return err
	}
	// Release on the press point; drifting could land outside small targets.
	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseReleased, x, y).
				WithButton(input.Left).
				WithClickCount(1).
				Do(ctx)
		}),
	)
}

// boxCenter returns the middle of the content quad.
func boxCenter(box *dom.BoxModel) (float64, float64, error) {
	if box == nil || len(box.Content) < 8 {
		return 0, 0, fmt.Errorf("invalid box model")
	}
	x := (box.Content[0] + box.Content[2] + box.Content[4] + box.Content[6]) / 4
	y := (box.Content[1] + box.Content[3] + box.Content[5] + box.Content[7]) / 4
	return x, y, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
