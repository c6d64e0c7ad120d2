package simulation

import "math"

const (
	// spatial phase of the drift field, radians per pixel
	driftPhaseX = 0.003
	driftPhaseY = 0.002

	// how fast the noise swirl evolves relative to the drift clock
	driftNoiseTime = 0.05

	chargeDistanceMin2 = 1.0
)

// applyCentering nudges the emotion cloud so its mean drifts toward the
// canvas center. Anchors are placed, never pushed.
func (s *Simulation) applyCentering() {
	n := len(s.bodies)
	if n == 0 || s.phys.CenteringStrength == 0 {
		return
	}
	var mx, my float64
	for i := range s.bodies {
		mx += s.bodies[i].X
		my += s.bodies[i].Y
	}
	cx, cy := s.Center()
	dx := (cx - mx/float64(n)) * s.phys.CenteringStrength
	dy := (cy - my/float64(n)) * s.phys.CenteringStrength
	for i := range s.bodies {
		s.bodies[i].VX += dx
		s.bodies[i].VY += dy
	}
}

// applyCollision resolves overlaps on the predicted next positions. Emotion
// pairs share the push by area; an emotion overlapping a need takes all of it.
func (s *Simulation) applyCollision() {
	re := s.phys.CollisionRadiusEmotion
	rn := s.phys.CollisionRadiusNeed
	strength := s.phys.CollisionStrength

	for i := range s.bodies {
		bi := &s.bodies[i]
		xi, yi := bi.X+bi.VX, bi.Y+bi.VY

		for j := i + 1; j < len(s.bodies); j++ {
			bj := &s.bodies[j]
			dx := xi - (bj.X + bj.VX)
			dy := yi - (bj.Y + bj.VY)
			r := 2 * re
			d2 := dx*dx + dy*dy
			if d2 >= r*r {
				continue
			}
			if d2 == 0 {
				dx, dy = s.jiggle(), s.jiggle()
				d2 = dx*dx + dy*dy
			}
			d := math.Sqrt(d2)
			l := (r - d) / d * strength
			dx *= l
			dy *= l
			// equal radii split the push evenly
			bi.VX += dx * 0.5
			bi.VY += dy * 0.5
			bj.VX -= dx * 0.5
			bj.VY -= dy * 0.5
		}

		for _, a := range s.anchors {
			dx := xi - a.X
			dy := yi - a.Y
			r := re + rn
			d2 := dx*dx + dy*dy
			if d2 >= r*r {
				continue
			}
			if d2 == 0 {
				dx, dy = s.jiggle(), s.jiggle()
				d2 = dx*dx + dy*dy
			}
			d := math.Sqrt(d2)
			l := (r - d) / d * strength
			bi.VX += dx * l
			bi.VY += dy * l
		}
	}
}

// applyCharge is many-body repulsion among emotions, zero beyond the
// configured distance. Needs neither repel nor are repelled.
func (s *Simulation) applyCharge() {
	if s.phys.ChargeStrength == 0 {
		return
	}
	maxD2 := s.phys.ChargeMaxDistance * s.phys.ChargeMaxDistance
	w := s.phys.ChargeStrength * s.alpha

	for i := range s.bodies {
		bi := &s.bodies[i]
		for j := range s.bodies {
			if i == j {
				continue
			}
			bj := &s.bodies[j]
			dx := bj.X - bi.X
			dy := bj.Y - bi.Y
			l := dx*dx + dy*dy
			if l >= maxD2 {
				continue
			}
			if l == 0 {
				dx, dy = s.jiggle(), s.jiggle()
				l = dx*dx + dy*dy
			}
			if l < chargeDistanceMin2 {
				l = math.Sqrt(chargeDistanceMin2 * l)
			}
			bi.VX += dx * w / l
			bi.VY += dy * w / l
		}
	}
}

// applyGravity pulls each emotion toward every resolved need, proportional
// to link strength and energy.
func (s *Simulation) applyGravity() {
	g := s.phys.GravityStrength * s.alpha
	for i := range s.bodies {
		b := &s.bodies[i]
		for _, p := range b.links {
			a := s.anchors[p.need]
			k := p.strength * g
			b.VX += (a.X - b.X) * k
			b.VY += (a.Y - b.Y) * k
		}
	}
}

// applyDrift adds the slowly rotating current. Magnitude scales with
// sqrt(alpha) so motion stays visible at the energy floor.
func (s *Simulation) applyDrift() {
	mag := s.DriftMagnitude()
	base := s.driftClock * s.phys.DriftSpeed
	scale := s.phys.DriftNoiseScale
	t := s.driftClock * driftNoiseTime

	for i := range s.bodies {
		b := &s.bodies[i]
		angle := base + b.X*driftPhaseX + b.Y*driftPhaseY + b.seed
		if scale > 0 {
			// normalized noise in [0, 1] becomes a swirl of ±π/2
			angle += (s.noise.Eval3(b.X*scale, b.Y*scale, t) - 0.5) * math.Pi
		}
		b.VX += math.Cos(angle) * mag
		b.VY += math.Sin(angle) * mag
	}
}

// applyPerturbation adds independent jitter per body per axis
func (s *Simulation) applyPerturbation() {
	amp := s.PerturbationAmplitude()
	if amp == 0 {
		return
	}
	for i := range s.bodies {
		s.bodies[i].VX += s.rng.Centered(amp)
		s.bodies[i].VY += s.rng.Centered(amp)
	}
}

func (s *Simulation) jiggle() float64 {
	return s.rng.Centered(1e-6)
}
