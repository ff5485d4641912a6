package colorutil

import (
	"image/color"
	"testing"
)

func TestWithOpacity(t *testing.T) {
	c := WithOpacity(Yellow, 0.5)
	if c.A != 127 {
		t.Errorf("alpha = %d, want 127", c.A)
	}
	if c.R != Yellow.R || c.G != Yellow.G || c.B != Yellow.B {
		t.Error("WithOpacity must not touch the color channels")
	}

	if WithOpacity(White, -1).A != 0 {
		t.Error("negative opacity should clamp to 0")
	}
	if WithOpacity(White, 2).A != 255 {
		t.Error("opacity above 1 should clamp to 255")
	}
}

func TestBlend(t *testing.T) {
	// A fully opaque source replaces the destination.
	if got := Blend(Black, White); got != White {
		t.Errorf("opaque blend = %+v, want white", got)
	}

	// A fully transparent source leaves the destination color.
	clear := color.RGBA{R: 255, G: 0, B: 0, A: 0}
	got := Blend(Black, clear)
	if got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("transparent blend = %+v, want black channels", got)
	}
	if got.A != 255 {
		t.Errorf("blend result must be opaque, alpha %d", got.A)
	}

	// 50% white over black lands mid-gray.
	half := color.RGBA{R: 255, G: 255, B: 255, A: 128}
	got = Blend(Black, half)
	if got.R < 126 || got.R > 130 {
		t.Errorf("half blend R = %d, want about 128", got.R)
	}
}

func TestLighten(t *testing.T) {
	if got := Lighten(Black, 1); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("full lighten of black = %+v, want white channels", got)
	}
	if got := Lighten(Orange, 0); got != Orange {
		t.Errorf("zero lighten changed the color: %+v", got)
	}

	got := Lighten(Black, 0.5)
	if got.R < 126 || got.R > 128 {
		t.Errorf("half lighten R = %d, want about 127", got.R)
	}

	// Alpha passes through untouched.
	in := color.RGBA{R: 10, G: 20, B: 30, A: 77}
	if Lighten(in, 0.3).A != 77 {
		t.Error("lighten must preserve alpha")
	}
}
