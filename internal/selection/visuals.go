package selection

import (
	"github.com/emotion-constellation/constellation-core/pkg/models"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

// Visual is the selection multiplier pair for an emotion
type Visual struct {
	Brightness float64 `json:"brightness"`
	SizeScale  float64 `json:"sizeScale"`
}

// Neutral leaves base visuals unchanged
var Neutral = Visual{Brightness: 1, SizeScale: 1}

// EmotionVisual returns the brightness and size multipliers of an emotion
func (m *Machine) EmotionVisual(id string) Visual {
	t := m.eased
	v := Neutral

	if t > neutralEpsilon {
		mode, selected := m.activeSelection()
		switch {
		case mode == models.ModeEmotion && id == selected:
			v.Brightness = utils.Lerp(1, m.cfg.SelectedBrightness, t)
			v.SizeScale = utils.Lerp(1, m.cfg.SelectedSizeScale, t)
		case m.linkedEmotions.has(id):
			v.Brightness = utils.Lerp(1, m.cfg.RelatedBrightness, t)
		default:
			v.Brightness = utils.Lerp(1, m.cfg.DimmedBrightness, t)
			v.SizeScale = utils.Lerp(1, m.cfg.DimmedSizeScale, t)
		}
	}

	if m.hoveredID == id && m.mode == models.ModeIdle && t < hoverEpsilon {
		v.Brightness = m.cfg.HoverBrightness
		v.SizeScale = m.cfg.HoverSizeScale
	}
	return v
}

// NeedIntensity returns the glow multiplier of a need
func (m *Machine) NeedIntensity(id string) float64 {
	t := m.eased
	if t <= neutralEpsilon {
		return 1
	}
	if m.linkedNeeds.has(id) {
		return utils.Lerp(1, m.cfg.SelectedNeedIntensity, t)
	}
	return utils.Lerp(1, m.cfg.DimmedNeedIntensity, t)
}

// ConnectionOpacity eases a thread toward the active opacity when it belongs
// to the selection and toward a fraction of its base otherwise.
func (m *Machine) ConnectionOpacity(emotionID, needID string, base float64) float64 {
	t := m.eased
	if t <= neutralEpsilon {
		return base
	}
	mode, selected := m.activeSelection()
	if mode == models.ModeEmotion && emotionID == selected {
		return utils.Lerp(base, m.cfg.ActiveOpacity, t)
	}
	if mode == models.ModeNeed && needID == selected && m.linkedEmotions.has(emotionID) {
		return utils.Lerp(base, m.cfg.ActiveOpacity, t)
	}
	return utils.Lerp(base, base*m.cfg.DimmedOpacityFraction, t)
}

func (m *Machine) classified() bool {
	return m.eased > m.cfg.ClassifyThreshold
}

// IsNeedSelected reports whether a need is selected or linked
func (m *Machine) IsNeedSelected(id string) bool {
	return m.linkedNeeds.has(id) && m.classified()
}

// IsNeedDimmed reports whether a need is outside a non-empty selection
func (m *Machine) IsNeedDimmed(id string) bool {
	return !m.linkedNeeds.has(id) && m.classified() && len(m.linkedNeeds) > 0
}

// IsEmotionHighlighted reports whether an emotion is selected or related
func (m *Machine) IsEmotionHighlighted(id string) bool {
	return m.linkedEmotions.has(id) && m.classified()
}

// IsEmotionDimmed reports whether an emotion is outside a non-empty selection
func (m *Machine) IsEmotionDimmed(id string) bool {
	return !m.linkedEmotions.has(id) && m.classified() && len(m.linkedEmotions) > 0
}
