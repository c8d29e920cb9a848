package ports

import "peajes/domain/chart"

// ChartRenderer draws a prepared chart spec into an image.
type ChartRenderer interface {
	Render(spec chart.Spec) ([]byte, error)
	ContentType() string
}
