package stream

import "fmt"

// Variant identifies the HAP flavour declared by the track's sample description.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantHap            // Hap1: RGB DXT1
	VariantHapAlpha       // Hap5: RGBA DXT5
	VariantHapQ           // HapY: scaled YCoCg DXT5
	VariantHapQAlpha      // HapM: scaled YCoCg DXT5 + BC4 alpha
	VariantHapAlphaOnly   // HapA: BC4 alpha
	VariantHapR           // Hap7: BC7
)

// ParseVariant maps a sample entry FourCC to a Variant.
func ParseVariant(fourCC string) (Variant, error) {
	switch fourCC {
	case "Hap1":
		return VariantHap, nil
	case "Hap5":
		return VariantHapAlpha, nil
	case "HapY":
		return VariantHapQ, nil
	case "HapM":
		return VariantHapQAlpha, nil
	case "HapA":
		return VariantHapAlphaOnly, nil
	case "Hap7":
		return VariantHapR, nil
	default:
		return VariantUnknown, fmt.Errorf("unsupported sample entry %q", fourCC)
	}
}

// FourCC returns the sample entry code for the variant.
func (v Variant) FourCC() string {
	switch v {
	case VariantHap:
		return "Hap1"
	case VariantHapAlpha:
		return "Hap5"
	case VariantHapQ:
		return "HapY"
	case VariantHapQAlpha:
		return "HapM"
	case VariantHapAlphaOnly:
		return "HapA"
	case VariantHapR:
		return "Hap7"
	default:
		return "????"
	}
}

func (v Variant) String() string {
	switch v {
	case VariantHap:
		return "hap"
	case VariantHapAlpha:
		return "hap_alpha"
	case VariantHapQ:
		return "hap_q"
	case VariantHapQAlpha:
		return "hap_q_alpha"
	case VariantHapAlphaOnly:
		return "hap_alpha_only"
	case VariantHapR:
		return "hap_r"
	default:
		return "unknown"
	}
}

// ParseVariantName maps the names used by encoders ("hap", "hap_alpha",
// "hap_q", ...) to a Variant.
func ParseVariantName(name string) (Variant, error) {
	for v := VariantHap; v <= VariantHapR; v++ {
		if v.String() == name {
			return v, nil
		}
	}
	return VariantUnknown, fmt.Errorf("unknown hap format %q", name)
}

// Formats returns the texture formats carried by one frame of the variant,
// in plane order.
func (v Variant) Formats() []TextureFormat {
	switch v {
	case VariantHap:
		return []TextureFormat{FormatDXT1}
	case VariantHapAlpha:
		return []TextureFormat{FormatDXT5}
	case VariantHapQ:
		return []TextureFormat{FormatYCoCgDXT5}
	case VariantHapQAlpha:
		return []TextureFormat{FormatYCoCgDXT5, FormatBC4}
	case VariantHapAlphaOnly:
		return []TextureFormat{FormatBC4}
	case VariantHapR:
		return []TextureFormat{FormatBC7}
	default:
		return nil
	}
}

// TextureFormat is a GPU block-compressed layout.
type TextureFormat int

const (
	FormatUnknown   TextureFormat = iota
	FormatDXT1                    // BC1, 8 bytes per block
	FormatDXT5                    // BC3, 16 bytes per block
	FormatYCoCgDXT5               // BC3 holding scaled CoCg+Y
	FormatBC4                     // RGTC1, 8 bytes per block
	FormatBC7                     // BPTC, 16 bytes per block
)

func (f TextureFormat) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT5:
		return "DXT5"
	case FormatYCoCgDXT5:
		return "YCoCg-DXT5"
	case FormatBC4:
		return "BC4"
	case FormatBC7:
		return "BC7"
	default:
		return "Unknown"
	}
}

// BlockSize returns the number of bytes per 4x4 texel block.
func (f TextureFormat) BlockSize() int {
	switch f {
	case FormatDXT1, FormatBC4:
		return 8
	case FormatDXT5, FormatYCoCgDXT5, FormatBC7:
		return 16
	default:
		return 0
	}
}

// PlaneSize returns the byte length of a width x height image in this format.
// Dimensions are rounded up to whole 4x4 blocks.
func (f TextureFormat) PlaneSize(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	bw := (width + 3) / 4
	bh := (height + 3) / 4
	return bw * bh * f.BlockSize()
}

// CodecFlags are the per-frame coding attributes recorded in the frame table.
type CodecFlags struct {
	Variant  Variant
	Keyframe bool
}
