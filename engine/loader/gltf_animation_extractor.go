package loader

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	doc *document.Document
}

// gltfAnimationExtractor defines the interface for extracting animation data from a resolved glTF document.
// It converts glTF animations into engine-ready AnimationClip structs with keyframe data.
//
// The boneMapping parameter maps joint nodes to bone indices in the topologically sorted skeleton,
// so that animation channels target the correct bones after skeleton reordering.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation. Channels targeting nodes outside
	// boneMapping and morph weight channels are skipped.
	//
	// Parameters:
	//   - anim: the animation to extract
	//   - boneMapping: maps joint nodes to skeleton bone indices
	//
	// Returns:
	//   - *model.AnimationClip: the extracted animation clip
	//   - error: error if keyframe data cannot be read
	ExtractAnimation(anim *document.Animation, boneMapping map[*document.Node]int32) (*model.AnimationClip, error)

	// ExtractAnimationsForSkeleton extracts all animations that target at least one mapped joint.
	//
	// Parameters:
	//   - boneMapping: maps joint nodes to skeleton bone indices
	//
	// Returns:
	//   - []*model.AnimationClip: animations that animate at least one joint
	//   - error: error if extraction fails
	ExtractAnimationsForSkeleton(boneMapping map[*document.Node]int32) ([]*model.AnimationClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a resolved document.
//
// Parameters:
//   - doc: the resolved document
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(doc *document.Document) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{doc: doc}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(anim *document.Animation, boneMapping map[*document.Node]int32) (*model.AnimationClip, error) {
	name := common.Coalesce(anim.Name, fmt.Sprintf("animation_%d", anim.Index))

	// channelMap merges translation, rotation and scale into one channel per bone.
	channelMap := make(map[int32]*model.AnimationChannel)

	var maxTime float32

	for i, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Target.Path == document.PathWeights {
			continue
		}
		boneIndex, ok := boneMapping[ch.Target.Node]
		if !ok {
			continue
		}

		sampler := ch.Sampler
		timestamps, err := sampler.Input.ReadScalars()
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}
		if len(timestamps) > 0 {
			maxTime = max(maxTime, timestamps[len(timestamps)-1])
		}

		animCh, exists := channelMap[boneIndex]
		if !exists {
			animCh = &model.AnimationChannel{
				BoneIndex:     boneIndex,
				Interpolation: string(sampler.Interpolation),
			}
			channelMap[boneIndex] = animCh
		}

		// Cubic spline samplers store three outputs per keyframe.
		perKey := 1
		if sampler.Interpolation == document.InterpolationCubicSpline {
			perKey = 3
		}

		switch ch.Target.Path {
		case document.PathTranslation, document.PathScale:
			values, err := sampler.Output.ReadVec3()
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read %s values: %w", name, i, ch.Target.Path, err)
			}
			keys := make([]model.VectorKeyframe, min(len(timestamps)*perKey, len(values)))
			for j := range keys {
				keys[j] = model.VectorKeyframe{Time: timestamps[j/perKey], Value: values[j]}
			}
			if ch.Target.Path == document.PathTranslation {
				animCh.PositionKeys = keys
			} else {
				animCh.ScaleKeys = keys
			}

		case document.PathRotation:
			values, err := sampler.Output.ReadVec4()
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read rotation values: %w", name, i, err)
			}
			keys := make([]model.QuaternionKeyframe, min(len(timestamps)*perKey, len(values)))
			for j := range keys {
				keys[j] = model.QuaternionKeyframe{Time: timestamps[j/perKey], Value: values[j]}
			}
			animCh.RotationKeys = keys
		}
	}

	channels := make([]model.AnimationChannel, 0, len(channelMap))
	for _, ch := range channelMap {
		channels = append(channels, *ch)
	}
	slices.SortFunc(channels, func(a, b model.AnimationChannel) int {
		return cmp.Compare(a.BoneIndex, b.BoneIndex)
	})

	return &model.AnimationClip{
		Name:           name,
		Duration:       maxTime,
		TicksPerSecond: 1.0,
		Channels:       channels,
	}, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAnimationsForSkeleton(boneMapping map[*document.Node]int32) ([]*model.AnimationClip, error) {
	var clips []*model.AnimationClip

	for _, anim := range e.doc.Animations {
		relevant := false
		for _, ch := range anim.Channels {
			if _, ok := boneMapping[ch.Target.Node]; ok && ch.Target.Path != document.PathWeights {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}

		clip, err := e.ExtractAnimation(anim, boneMapping)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", anim.Index, err)
		}
		clips = append(clips, clip)
	}

	return clips, nil
}
