package document

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// StagingData converts the sampler into GPU sampler parameters. Unset filters
// fall back to linear filtering; W addressing is always repeat.
//
// Returns:
//   - *common.SamplerStagingData: the converted sampler staging data
func (s *Sampler) StagingData() *common.SamplerStagingData {
	result := &common.SamplerStagingData{
		AddressModeU:  s.WrapS.AddressMode(),
		AddressModeV:  s.WrapT.AddressMode(),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}

	if s.MagFilter == FilterNearest {
		result.MagFilter = wgpu.FilterModeNearest
	}

	switch s.MinFilter {
	case FilterNearest:
		result.MinFilter = wgpu.FilterModeNearest
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case FilterLinear:
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case FilterNearestMipmapNearest:
		result.MinFilter = wgpu.FilterModeNearest
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case FilterLinearMipmapNearest:
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case FilterNearestMipmapLinear:
		result.MinFilter = wgpu.FilterModeNearest
	}

	return result
}

// AddressMode converts the wrap code to a wgpu address mode. Unknown codes
// map to repeat.
//
// Returns:
//   - wgpu.AddressMode: the corresponding wgpu address mode
func (w Wrap) AddressMode() wgpu.AddressMode {
	switch w {
	case WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
