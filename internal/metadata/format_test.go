package metadata

import "testing"

func TestFormatExposureTime(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0s"},
		{1, "1s"},
		{2, "2s"},
		{0.5, "1/2s"},
		{1.0 / 250, "1/250s"},
		{1.0 / 3, "1/3s"},
	}
	for _, c := range cases {
		if got := FormatExposureTime(c.in); got != c.want {
			t.Errorf("FormatExposureTime(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatAperture(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1.8, "f/1.8"},
		{2.0, "f/2"},
		{2.83, "f/2.8"},
		{5.6, "f/5.6"},
	}
	for _, c := range cases {
		if got := FormatAperture(c.in); got != c.want {
			t.Errorf("FormatAperture(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatFocalLength(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{50, "50mm"},
		{35.04, "35mm"},
		{18.6, "18.6mm"},
	}
	for _, c := range cases {
		if got := FormatFocalLength(c.in); got != c.want {
			t.Errorf("FormatFocalLength(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
