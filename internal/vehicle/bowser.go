package vehicle

import rl "github.com/gen2brain/raylib-go/raylib"

// Bowser is a fuel dispenser. Dispensing wears it down; a bowser with no
// health left dispenses nothing.
type Bowser struct {
	Position rl.Vector3
	Stock    float32
	Health   float32
	Wear     float32 // health lost per unit dispensed
	Range    float32 // max distance from which a vehicle can fill up
}

func NewBowser(position rl.Vector3, stock float32) *Bowser {
	return &Bowser{
		Position: position,
		Stock:    stock,
		Health:   100,
		Wear:     0.05,
		Range:    5,
	}
}

func (b *Bowser) Working() bool { return b.Health > 0 && b.Stock > 0 }

func (b *Bowser) InRange(p rl.Vector3) bool {
	return rl.Vector3Distance(b.Position, p) <= b.Range
}

// dispense takes up to amount from the stock and returns what was taken
func (b *Bowser) dispense(amount float32) float32 {
	if !b.Working() || amount <= 0 {
		return 0
	}
	amount = min(amount, b.Stock)
	b.Stock -= amount
	b.Health = max(b.Health-amount*b.Wear, 0)
	return amount
}
