package simulation

import "math"

// ringCenter is the canvas center shifted by the configured ring offset
func (s *Simulation) ringCenter() (float64, float64) {
	cx, cy := s.Center()
	return cx + s.layout.RingOffsetX*s.width, cy + s.layout.RingOffsetY*s.height
}

// placeAnchors spreads the needs evenly around the (rotated) ring
func (s *Simulation) placeAnchors() {
	n := len(s.anchors)
	if n == 0 {
		return
	}
	cx, cy := s.ringCenter()
	radius := math.Min(s.width, s.height) * s.layout.RingRadius
	for i := range s.anchors {
		angle := float64(i)/float64(n)*2*math.Pi + s.layout.RingAngleOffset + s.rotation
		s.anchors[i].X = cx + math.Cos(angle)*radius*s.layout.RingStretchX
		s.anchors[i].Y = cy + math.Sin(angle)*radius
	}
}

// placeBodies puts each emotion at the strength-weighted centroid of its
// resolved needs plus jitter. Emotions with no resolved need start at the
// canvas center.
func (s *Simulation) placeBodies() {
	s.bodies = make([]Body, len(s.graph.Emotions))
	for i, e := range s.graph.Emotions {
		b := &s.bodies[i]
		b.ID = e.ID
		b.seed = s.rng.Angle()

		for _, l := range e.Links {
			ni, ok := s.graph.NeedIndex(l.NeedID)
			if !ok {
				continue
			}
			b.links = append(b.links, pull{need: ni, strength: l.Strength})
		}

		x, y := s.centroid(b.links)
		b.X = x + s.rng.Centered(s.phys.InitialJitter)
		b.Y = y + s.rng.Centered(s.phys.InitialJitter)
	}
}

func (s *Simulation) centroid(links []pull) (float64, float64) {
	var sx, sy, sw float64
	for _, p := range links {
		a := s.anchors[p.need]
		sx += a.X * p.strength
		sy += a.Y * p.strength
		sw += p.strength
	}
	if sw == 0 {
		return s.Center()
	}
	return sx / sw, sy / sw
}
