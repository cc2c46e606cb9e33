package raster

import (
	"nds3dsoft/internal/vram"
	"testing"
)

// texparamWord builds a minimal texture parameter word: VRAM offset 0,
// given format, 8x8 size, opaque color 0 (alpha0 bit clear).
func texparamWord(format uint32) uint32 {
	return format << 26
}

func TestSampleTexture4Color(t *testing.T) {
	vr := vram.NewFlat()

	// One byte packs four 2-bit indices for texels (sc=0..3, tc=0):
	// 0xE4 = 11 10 01 00 -> sc0=0, sc1=1, sc2=2, sc3=3.
	vr.WriteTexture(0, []byte{0xE4})

	pal := []byte{
		0x00, 0x00, // index 0: black (color 0; opaque here, alpha0 bit clear)
		0x34, 0x12, // index 1
		0x45, 0x23, // index 2
		0x56, 0x34, // index 3
	}
	vr.WritePalette(0, pal)

	texparam := texparamWord(texFmt4Color)

	cases := []struct {
		s         int16
		wantColor uint16
		wantAlpha uint8
	}{
		{0, 0x0000, 31}, // alpha0 bit clear -> index 0 is opaque, alpha 31
		{16, 0x1234, 31},
		{32, 0x2345, 31},
		{48, 0x3456, 31},
	}

	for _, c := range cases {
		color, alpha := SampleTexture(vr, texparam, 0, c.s, 0)
		if color != c.wantColor || alpha != c.wantAlpha {
			t.Fatalf("SampleTexture(s=%d) = (%#04x, %d), want (%#04x, %d)", c.s, color, alpha, c.wantColor, c.wantAlpha)
		}
	}
}

func TestSampleTexture4ColorTransparentIndex0(t *testing.T) {
	vr := vram.NewFlat()
	vr.WriteTexture(0, []byte{0x00}) // all four texels index 0
	vr.WritePalette(0, []byte{0xFF, 0x7F})

	// Set the alpha0 bit (texparam bit 29) so index 0 renders transparent.
	texparam := texparamWord(texFmt4Color) | (1 << 29)

	_, alpha := SampleTexture(vr, texparam, 0, 0, 0)
	if alpha != 0 {
		t.Fatalf("index0 alpha with alpha0 bit set = %d, want 0", alpha)
	}
}

func TestSampleTexture256Color(t *testing.T) {
	vr := vram.NewFlat()
	vr.WriteTexture(0, []byte{5})
	vr.WritePalette(10, []byte{0xAD, 0xDE})

	texparam := texparamWord(texFmt256Color)
	color, alpha := SampleTexture(vr, texparam, 0, 0, 0)
	if color != 0xDEAD || alpha != 31 {
		t.Fatalf("SampleTexture256Color = (%#04x, %d), want (0xdead, 31)", color, alpha)
	}
}

func TestSampleTextureDirectColor(t *testing.T) {
	vr := vram.NewFlat()
	vr.WriteTexture(0, []byte{0x34, 0x92}) // little-endian u16: 0x9234, alpha bit set

	texparam := texparamWord(texFmtDirect)
	color, alpha := SampleTexture(vr, texparam, 0, 0, 0)
	if color != 0x9234 || alpha != 31 {
		t.Fatalf("SampleTextureDirectColor = (%#04x, %d), want (0x9234, 31)", color, alpha)
	}
}

func TestSampleTextureDirectColorAlphaClear(t *testing.T) {
	vr := vram.NewFlat()
	vr.WriteTexture(0, []byte{0x34, 0x12}) // bit 15 clear

	texparam := texparamWord(texFmtDirect)
	_, alpha := SampleTexture(vr, texparam, 0, 0, 0)
	if alpha != 0 {
		t.Fatalf("SampleTextureDirectColor alpha = %d, want 0", alpha)
	}
}

func TestTextureFormatField(t *testing.T) {
	for fmt := uint32(0); fmt <= 7; fmt++ {
		if got := TextureFormat(texparamWord(fmt)); got != fmt {
			t.Fatalf("TextureFormat(texparamWord(%d)) = %d, want %d", fmt, got, fmt)
		}
	}
}
