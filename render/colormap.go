// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "sort"

// Colormap maps normalized scalar values to colors by piecewise-linear
// interpolation between control points.
type Colormap struct {
	stops []colorStop
}

type colorStop struct {
	val   float32
	color Color
}

// NewColormap builds a colormap from flat (value, red, green, blue) quads,
// the layout used by colormap options. Values are expected in [0,1]; stops
// are sorted. Incomplete trailing quads are ignored. A nil or empty input
// returns the default colormap.
func NewColormap(quads []float64) *Colormap {
	cm := &Colormap{}
	for i := 0; i+3 < len(quads); i += 4 {
		cm.stops = append(cm.stops, colorStop{
			val:   float32(quads[i]),
			color: Color{float32(quads[i+1]), float32(quads[i+2]), float32(quads[i+3])},
		})
	}
	if len(cm.stops) == 0 {
		return DefaultColormap()
	}
	sort.SliceStable(cm.stops, func(i, j int) bool { return cm.stops[i].val < cm.stops[j].val })
	return cm
}

// DefaultColormap returns the inferno-like map used when no colormap option
// is set: black through purple, orange and yellow to near-white.
func DefaultColormap() *Colormap {
	return NewColormap([]float64{
		0.0, 0.0, 0.0, 0.0,
		0.4, 0.9, 0.0, 0.0,
		0.8, 0.9, 0.9, 0.0,
		1.0, 1.0, 1.0, 1.0,
	})
}

// At returns the color for a normalized value t. Values outside the stop
// range clamp to the end colors.
func (cm *Colormap) At(t float32) Color {
	n := len(cm.stops)
	if n == 0 {
		return Gray(t)
	}
	if t <= cm.stops[0].val {
		return cm.stops[0].color
	}
	if t >= cm.stops[n-1].val {
		return cm.stops[n-1].color
	}
	i := sort.Search(n, func(i int) bool { return cm.stops[i].val >= t }) - 1
	lo, hi := cm.stops[i], cm.stops[i+1]
	span := hi.val - lo.val
	if span <= 0 {
		return hi.color
	}
	return lo.color.Lerp(hi.color, (t-lo.val)/span)
}

// Lookup maps a raw scalar in [rangeMin, rangeMax] to a color. A degenerate
// range maps everything to the low end.
func (cm *Colormap) Lookup(v, rangeMin, rangeMax float32) Color {
	if rangeMax <= rangeMin {
		return cm.At(0)
	}
	return cm.At((v - rangeMin) / (rangeMax - rangeMin))
}
