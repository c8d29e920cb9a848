package render

import (
	"bytes"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainchart "peajes/domain/chart"
	"peajes/internal/errors"
)

func ptr(v float64) *float64 { return &v }

func lineSpec(values ...*float64) domainchart.Spec {
	labels := []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}
	return domainchart.Spec{
		Kind:        domainchart.Line,
		Title:       "Tráfico mensual",
		Labels:      labels,
		Datasets:    []domainchart.Dataset{{Label: "Tráfico mensual (2024)", Values: values}},
		XLabel:      "Mes",
		YLabel:      "Valor",
		BeginAtZero: true,
		Colors:      []string{"#4F46E5"},
	}
}

func TestPNGRendererKinds(t *testing.T) {
	r := NewPNGRenderer()

	tests := []struct {
		name string
		spec domainchart.Spec
	}{
		{
			name: "line with gaps",
			spec: lineSpec(ptr(10), nil, ptr(12), ptr(13), nil, nil, nil, nil, nil, nil, nil, ptr(9)),
		},
		{
			name: "line with one point",
			spec: lineSpec(ptr(7), nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil),
		},
		{
			name: "bar",
			spec: domainchart.Spec{
				Kind:     domainchart.Bar,
				Title:    "Top 10 peajes",
				Labels:   []string{"Sachica", "Cerritos", "Circasia"},
				Datasets: []domainchart.Dataset{{Values: []*float64{ptr(300), nil, ptr(100)}}},
				YLabel:   "Número de vehículos",
				Colors:   []string{"#10B981"},
			},
		},
		{
			name: "pie",
			spec: domainchart.Spec{
				Kind:     domainchart.Pie,
				Title:    "Exentos",
				Labels:   []string{"I", "II", "III"},
				Datasets: []domainchart.Dataset{{Values: []*float64{ptr(5), ptr(0), ptr(3)}}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Render(tt.spec)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Greater(t, img.Bounds().Dx(), 0)
			assert.Greater(t, img.Bounds().Dy(), 0)
		})
	}
}

func TestPNGRendererNoData(t *testing.T) {
	r := NewPNGRenderer()

	_, err := r.Render(lineSpec(nil, nil, nil))
	assert.True(t, errors.IsEmptyDataset(err))

	_, err = r.Render(domainchart.Spec{Kind: "radar"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSlotReplacesPreviousImage(t *testing.T) {
	s := NewSlot(Chart1, NewPNGRenderer())
	_, ok := s.Current()
	assert.False(t, ok)

	first, err := s.Render(lineSpec(ptr(1), ptr(2)))
	require.NoError(t, err)
	second, err := s.Render(lineSpec(ptr(3), ptr(4)))
	require.NoError(t, err)

	assert.NotEmpty(t, first.Data, "a returned image stays intact")
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Same(t, second, cur)

	// a failed render keeps what was there
	_, err = s.Render(lineSpec(nil))
	require.Error(t, err)
	cur, _ = s.Current()
	assert.Same(t, second, cur)

	s.Dispose()
	_, ok = s.Current()
	assert.False(t, ok)
	assert.NotEmpty(t, second.Data)
}

func TestSlotConcurrentRendersKeepReturnedImages(t *testing.T) {
	s := NewSlot(Chart1, NewPNGRenderer())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := s.Render(lineSpec(ptr(float64(i)), ptr(float64(i+1))))
			if !assert.NoError(t, err) {
				return
			}
			_, err = png.Decode(bytes.NewReader(img.Data))
			assert.NoError(t, err, "image %d decodes after later renders", i)
		}(i)
	}
	wg.Wait()

	_, ok := s.Current()
	assert.True(t, ok)
}

func TestSlotConcurrentRender(t *testing.T) {
	s := NewSlot(Chart1, NewPNGRenderer())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			_, err := s.Render(lineSpec(ptr(v), ptr(v+1)))
			assert.NoError(t, err)
		}(float64(i))
	}
	wg.Wait()

	cur, ok := s.Current()
	require.True(t, ok)
	assert.NotEmpty(t, cur.Data)
	assert.Equal(t, "image/png", cur.ContentType)
}

func TestBoard(t *testing.T) {
	b := NewBoard(NewPNGRenderer())
	assert.Equal(t, []string{Chart1, Chart2, Chart3}, b.Names())

	s, err := b.Slot(Chart2)
	require.NoError(t, err)
	assert.Equal(t, Chart2, s.Name())

	_, err = b.Slot("chart9")
	assert.True(t, errors.IsNotFound(err))

	custom := NewBoard(NewPNGRenderer(), "a", "a", "b")
	assert.Equal(t, []string{"a", "b"}, custom.Names())
}
